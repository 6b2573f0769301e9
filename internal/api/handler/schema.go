package handler

import "github.com/storefront/storefront-api/internal/core/domain"

// errorResponse documents the error envelope rendered by the HTTP error handler.
type errorResponse struct {
	Error struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Fields  []domain.FieldError `json:"fields,omitempty"`
	} `json:"error"`
	Path string `json:"path"`
}

// --- Auth ---

type signupRequest struct {
	Username string   `json:"username"  validate:"required,min=3,max=50"`
	Password string   `json:"password"  validate:"required,min=6"`
	FullName string   `json:"full_name" validate:"max=100"`
	Email    string   `json:"email"     validate:"omitempty,email"`
	IsActive *bool    `json:"is_active"`
	Scopes   []string `json:"scopes"    validate:"omitempty,dive,required"`
}

// tokenRequest accepts OAuth2 password-flow form fields or the same fields as JSON.
type tokenRequest struct {
	GrantType string `form:"grant_type" json:"grant_type" validate:"omitempty,eq=password"`
	Username  string `form:"username"   json:"username"   validate:"required"`
	Password  string `form:"password"   json:"password"   validate:"required"`
	Scope     string `form:"scope"      json:"scope"`
}

// --- Users ---

type listUsersRequest struct {
	Limit  *int `query:"limit"  validate:"omitnil,min=1,max=100"`
	Offset int  `query:"offset" validate:"min=0"`
}

type userIDRequest struct {
	ID int64 `param:"id" validate:"gt=0"`
}

type updateUserRequest struct {
	ID       int64     `param:"id" json:"-" validate:"gt=0"`
	FullName *string   `json:"full_name" validate:"omitnil,max=100"`
	Email    *string   `json:"email"     validate:"omitnil,email"`
	IsActive *bool     `json:"is_active"`
	Scopes   *[]string `json:"scopes"    validate:"omitnil,dive,required"`
}

func (r updateUserRequest) toPatch() domain.UserPatch {
	return domain.UserPatch{
		FullName: r.FullName,
		Email:    r.Email,
		IsActive: r.IsActive,
		Scopes:   r.Scopes,
	}
}

// --- System ---

type computeRequest struct {
	N int `query:"n" validate:"required,min=1,max=40"`
}

type computeResponse struct {
	Fib int64 `json:"fib"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Files ---

type fileResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}
