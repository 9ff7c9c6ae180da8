package catalog

// File is the on-disk JSON shape of a catalog override.
type File struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Products    []Entry `json:"products"`
}

// Circuit values. Indirect systems heat a closed loop and are the ones to pick
// for hard or borehole water.
const (
	CircuitDirect   = "Direct"
	CircuitIndirect = "Indirect"
)

// Entry is one canonical product.
type Entry struct {
	Name          string `json:"name"`
	Code          string `json:"code"`
	CollectorType string `json:"collectorType"`
	TankLiters    int    `json:"tankLiters"`
	Circuit       string `json:"circuit"`
	HeatOutput    string `json:"heatOutput,omitempty"`
	Description   string `json:"description"`
}

var defaultEntries = []Entry{
	{
		Name: "Solarmax Flat Plate 150L Direct", Code: "SMF150D", CollectorType: "Flat Plate",
		TankLiters: 150, Circuit: CircuitDirect, HeatOutput: "2.0 kW",
		Description: "Compact thermosiphon flat plate system for small households on soft mains water.",
	},
	{
		Name: "Solarmax Flat Plate 150L Indirect", Code: "SMF150I", CollectorType: "Flat Plate",
		TankLiters: 150, Circuit: CircuitIndirect, HeatOutput: "2.0 kW",
		Description: "Closed loop flat plate system with a jacketed tank, tolerant of hard water.",
	},
	{
		Name: "Solarmax Flat Plate 200L Direct", Code: "SMF200D", CollectorType: "Flat Plate",
		TankLiters: 200, Circuit: CircuitDirect, HeatOutput: "2.6 kW",
		Description: "Mid-size thermosiphon flat plate system for family homes on treated water.",
	},
	{
		Name: "Solarmax Flat Plate 200L Indirect", Code: "SMF200I", CollectorType: "Flat Plate",
		TankLiters: 200, Circuit: CircuitIndirect, HeatOutput: "2.6 kW",
		Description: "Mid-size closed loop flat plate system suited to borehole supplies.",
	},
	{
		Name: "Solarmax Flat Plate 300L Direct", Code: "SMF300D", CollectorType: "Flat Plate",
		TankLiters: 300, Circuit: CircuitDirect, HeatOutput: "3.9 kW",
		Description: "Large direct flat plate system for big households and guest houses.",
	},
	{
		Name: "Solarmax Flat Plate 300L Indirect", Code: "SMF300I", CollectorType: "Flat Plate",
		TankLiters: 300, Circuit: CircuitIndirect, HeatOutput: "3.9 kW",
		Description: "Large closed loop flat plate system with frost and scale protection.",
	},
	{
		Name: "Solarmax Evacuated Tube 150L Direct", Code: "SME150D", CollectorType: "Evacuated Tube",
		TankLiters: 150, Circuit: CircuitDirect, HeatOutput: "2.2 kW",
		Description: "Evacuated tube system for cooler, cloudier highland sites.",
	},
	{
		Name: "Solarmax Evacuated Tube 200L Indirect", Code: "SME200I", CollectorType: "Evacuated Tube",
		TankLiters: 200, Circuit: CircuitIndirect, HeatOutput: "3.0 kW",
		Description: "Heat pipe evacuated tube system with an indirect coil tank.",
	},
	{
		Name: "Solarmax Evacuated Tube 300L Indirect", Code: "SME300I", CollectorType: "Evacuated Tube",
		TankLiters: 300, Circuit: CircuitIndirect, HeatOutput: "4.4 kW",
		Description: "High yield heat pipe system for large homes with hard water.",
	},
	{
		Name: "Solarmax Split System 500L Indirect", Code: "SMS500I", CollectorType: "Flat Plate",
		TankLiters: 500, Circuit: CircuitIndirect, HeatOutput: "6.5 kW",
		Description: "Pumped split system with a ground mounted tank for institutions and apartments.",
	},
}
