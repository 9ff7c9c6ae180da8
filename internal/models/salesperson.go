package models

const UserTypeSalesEngineer = "sales_engineer"

// Salesperson is the signed-in sales engineer as known to the ERP.
type Salesperson struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Type  string `json:"type"`
}

type CodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric"`
}

type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        Salesperson `json:"user"`
}
