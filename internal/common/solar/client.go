// Package solar geocodes a city with OpenCage and reads its monthly
// irradiance climatology from NASA POWER.
package solar

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"solar-advisor/internal/common/config"
	apperrors "solar-advisor/internal/common/errors"
	"solar-advisor/internal/common/httpclient"
	"solar-advisor/internal/models"
)

const (
	ParameterIrradiance = "ALLSKY_SFC_SW_DWN"
	unitIrradiance      = "kW-hr/m^2/day"
	annualKey           = "ANN"
)

type geocodeResponse struct {
	Results []struct {
		Geometry struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
	} `json:"results"`
}

type powerResponse struct {
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}

type Client struct {
	http        *httpclient.Client
	openCageURL string
	openCageKey string
	nasaURL     string
}

func NewClient(cfg config.SolarConfig, opts ...httpclient.Option) *Client {
	return &Client{
		http:        httpclient.New("solar", config.GetDuration(cfg.Timeout), 1, opts...),
		openCageURL: cfg.OpenCageURL,
		openCageKey: cfg.OpenCageKey,
		nasaURL:     cfg.NASAURL,
	}
}

// Radiation returns the climatology for city. Errors are *StandardError:
// CONFIGURATION_ERROR without an OpenCage key, CITY_NOT_FOUND when geocoding
// yields nothing, SOLAR_LOOKUP_FAILED when NASA POWER fails.
func (c *Client) Radiation(ctx context.Context, city string) (*models.SolarRadiation, error) {
	if c.openCageKey == "" {
		return nil, apperrors.NewConfigurationError("OpenCage API key not set")
	}

	lat, lon, err := c.geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	monthly, err := c.climatology(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	return &models.SolarRadiation{
		City:          city,
		Latitude:      lat,
		Longitude:     lon,
		Parameter:     ParameterIrradiance,
		Unit:          unitIrradiance,
		Monthly:       monthly,
		AnnualAverage: AnnualAverage(monthly),
	}, nil
}

func (c *Client) geocode(ctx context.Context, city string) (float64, float64, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("key", c.openCageKey)
	q.Set("limit", "1")

	var geo geocodeResponse
	err := c.http.DoJSON(ctx, httpclient.Request{Method: http.MethodGet, URL: c.openCageURL + "?" + q.Encode()}, &geo)
	if err != nil {
		if code := httpclient.StatusCode(err); code >= 400 && code < 500 {
			return 0, 0, apperrors.NewCityNotFoundError(city)
		}
		return 0, 0, apperrors.NewSolarLookupFailedError(fmt.Sprintf("geocoding failed: %v", err))
	}
	if len(geo.Results) == 0 {
		return 0, 0, apperrors.NewCityNotFoundError(city)
	}
	return geo.Results[0].Geometry.Lat, geo.Results[0].Geometry.Lng, nil
}

func (c *Client) climatology(ctx context.Context, lat, lon float64) (map[string]float64, error) {
	q := url.Values{}
	q.Set("parameters", ParameterIrradiance)
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("community", "RE")
	q.Set("format", "JSON")

	var power powerResponse
	if err := c.http.DoJSON(ctx, httpclient.Request{Method: http.MethodGet, URL: c.nasaURL + "?" + q.Encode()}, &power); err != nil {
		return nil, apperrors.NewSolarLookupFailedError(fmt.Sprintf("NASA POWER request failed: %v", err))
	}

	monthly := power.Properties.Parameter[ParameterIrradiance]
	if len(monthly) == 0 {
		return nil, apperrors.NewInternalError(fmt.Errorf("missing %s data from NASA POWER", ParameterIrradiance))
	}
	return monthly, nil
}

// AnnualAverage averages the monthly values, ignoring the annual "ANN"
// entry, rounded to two decimals.
func AnnualAverage(monthly map[string]float64) float64 {
	var sum float64
	var n int
	for k, v := range monthly {
		if k == annualKey {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Round(sum/float64(n)*100) / 100
}
