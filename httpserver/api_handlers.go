package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"imageratio/db"
	"imageratio/messages"
	"imageratio/storage"
	"imageratio/validations"
	"imageratio/validations/validators"
)

// ErrorCode is used to define the error code.
type ErrorCode string

const (
	// ErrorCodeInternalServerError is used when an internal server error occurs.
	ErrorCodeInternalServerError ErrorCode = "internal_server_error"

	// ErrorCodeInvalidType is used when the type is invalid.
	ErrorCodeInvalidType ErrorCode = "invalid_type"

	// ErrorTypeInvalidJSON is used when the JSON is invalid.
	ErrorTypeInvalidJSON ErrorCode = "invalid_json"

	// ErrorCodeInvalidKey is used when the key is invalid.
	ErrorCodeInvalidKey ErrorCode = "invalid_key"

	// ErrorCodeInvalidProfile is used when the profile is invalid.
	ErrorCodeInvalidProfile ErrorCode = "invalid_profile"

	// ErrorCodeInvalidHeaders is used when the generic HTTP headers are invalid.
	ErrorCodeInvalidHeaders ErrorCode = "invalid_headers"

	// ErrorCodeTooLarge is used when the content is too large.
	ErrorCodeTooLarge ErrorCode = "too_large"

	// ErrorCodeInvalidRuleSet is used when the rule set is invalid.
	ErrorCodeInvalidRuleSet ErrorCode = "invalid_rule_set"

	// ErrorCodeProfileExists is used when the profile already exists.
	ErrorCodeProfileExists ErrorCode = "profile_exists"

	// ErrorCodeProfilesDisabled is used when no profile store is configured.
	ErrorCodeProfilesDisabled ErrorCode = "profiles_disabled"

	// ErrorCodeStorageDisabled is used when no object storage is configured.
	ErrorCodeStorageDisabled ErrorCode = "storage_disabled"

	// ErrorCodeRateLimited is used when the caller is over the request rate.
	ErrorCodeRateLimited ErrorCode = "rate_limited"
)

// APIError is used to define an API error.
type APIError struct {
	status int

	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

var errInternal = &APIError{
	status:  http.StatusInternalServerError,
	Code:    ErrorCodeInternalServerError,
	Message: "Internal Server Error",
}

type apiServer struct {
	s *Server
}

func (s *apiServer) log(ctx context.Context) *zap.Logger {
	return s.s.logger().With(zap.String("request_id", requestID(ctx)))
}

// profile is a stored profile with its rule set already compiled and its
// templates merged onto the configured ones.
type profile struct {
	pipeline *validations.Pipeline
	messages messages.Messages
}

func (s *apiServer) getProfile(ctx context.Context, name string) (*profile, *APIError) {
	if s.s.DB == nil {
		return nil, &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorCodeProfilesDisabled,
			Message: "Profiles are not configured",
		}
	}

	if s.s.Profiles != nil {
		if p, ok := s.s.Profiles.Get(name); ok {
			return p.(*profile), nil
		}
	}

	row, err := s.s.DB.GetProfile(ctx, name)
	if err != nil {
		if errors.Is(err, db.ErrProfileNotExists) {
			return nil, &APIError{
				status:  http.StatusNotFound,
				Code:    ErrorCodeInvalidProfile,
				Message: "Profile not found",
			}
		}
		s.log(ctx).Error("Error getting profile", zap.String("profile", name), zap.Error(err))
		return nil, errInternal
	}

	pipeline, err := validations.Compile(row.Rules)
	if err != nil {
		s.log(ctx).Error("Stored profile does not compile", zap.String("profile", name), zap.Error(err))
		return nil, &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorCodeInvalidRuleSet,
			Message: err.Error(),
		}
	}
	p := &profile{
		pipeline: pipeline,
		messages: s.s.Config.Messages.Merge(row.Messages()),
	}

	if s.s.Profiles != nil {
		s.s.Profiles.Set(name, p, cache.DefaultExpiration)
	}
	return p, nil
}

// Compiles the rule set from either the rules given or the named profile.
// Profile rule sets are compiled once and cached.
func (s *apiServer) pipeline(ctx context.Context, rules, name string) (*validations.Pipeline, messages.Messages, *APIError) {
	m := s.s.Config.Messages
	if name != "" {
		p, err := s.getProfile(ctx, name)
		if err != nil {
			return nil, m, err
		}
		if rules == "" {
			return p.pipeline, p.messages, nil
		}
		m = p.messages
	}
	if rules == "" {
		return nil, m, &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorCodeInvalidRuleSet,
			Message: "Either rules or profile is required",
		}
	}

	p, err := validations.Compile(rules)
	if err != nil {
		return nil, m, &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorCodeInvalidRuleSet,
			Message: err.Error(),
		}
	}
	return p, m, nil
}

// CheckRequest is used to define the check request. The image is the request
// body, so this is sent in the X-Json-Body header.
type CheckRequest struct {
	Rules     string `json:"rules,omitempty"`
	Profile   string `json:"profile,omitempty"`
	File      string `json:"file"`
	Attribute string `json:"attribute,omitempty"`
}

// CheckResponse is used to define the verdict for one image.
type CheckResponse struct {
	RequestID string `json:"request_id"`
	Valid     bool   `json:"valid"`
	Rule      string `json:"rule,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Ratio     string `json:"ratio,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (s *apiServer) run(ctx context.Context, p *validations.Pipeline, f *validators.File) (*CheckResponse, *APIError) {
	resp := &CheckResponse{RequestID: requestID(ctx), Valid: true}
	err := p.Run(f)
	if err == nil {
		return resp, nil
	}
	if re, ok := validations.IsRuleError(err); ok {
		resp.Valid = false
		resp.Rule = re.Rule
		resp.Reason = re.Reason
		resp.Ratio = re.Ratio
		resp.Message = re.Message
		return resp, nil
	}
	if validations.IsConfigError(err) {
		return nil, &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorCodeInvalidRuleSet,
			Message: err.Error(),
		}
	}
	s.log(ctx).Error("Error running rules", zap.String("rules", p.String()), zap.Error(err))
	return nil, errInternal
}

func attribute(a string) string {
	if a == "" {
		return "file"
	}
	return a
}

// Check is used to validate the image in the request body.
func (s *apiServer) Check(r *http.Request, req *CheckRequest) (*CheckResponse, *APIError) {
	p, m, err := s.pipeline(r.Context(), req.Rules, req.Profile)
	if err != nil {
		return nil, err
	}

	// Check Content-Length is present.
	if r.ContentLength == -1 {
		return nil, &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorCodeInvalidHeaders,
			Message: "Content-Length header is required",
		}
	}
	if r.ContentLength > s.s.Config.MaxBodyBytes {
		return nil, &APIError{
			status:  http.StatusRequestEntityTooLarge,
			Code:    ErrorCodeTooLarge,
			Message: "File is too large",
		}
	}

	defer r.Body.Close()
	b, e2 := io.ReadAll(io.LimitReader(r.Body, r.ContentLength))
	if e2 != nil {
		s.log(r.Context()).Error("Error reading body", zap.Error(e2))
		return nil, errInternal
	}

	return s.run(r.Context(), p, &validators.File{
		Name:       req.File,
		Attribute:  attribute(req.Attribute),
		Data:       b,
		Messages:   m,
		AutoOrient: s.s.Config.AutoOrient,
	})
}

// CheckObjectRequest is used to define the check object request.
type CheckObjectRequest struct {
	Key       string `json:"key"`
	Rules     string `json:"rules,omitempty"`
	Profile   string `json:"profile,omitempty"`
	Attribute string `json:"attribute,omitempty"`
}

// CheckObject is used to validate an image already in the bucket.
func (s *apiServer) CheckObject(r *http.Request, req *CheckObjectRequest) (*CheckResponse, *APIError) {
	if s.s.Objects == nil {
		return nil, &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorCodeStorageDisabled,
			Message: "Object storage is not configured",
		}
	}
	if req.Key == "" {
		return nil, &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorCodeInvalidKey,
			Message: "Key is empty",
		}
	}

	p, m, err := s.pipeline(r.Context(), req.Rules, req.Profile)
	if err != nil {
		return nil, err
	}

	b, e2 := s.s.Objects.Fetch(r.Context(), req.Key)
	if e2 != nil {
		switch {
		case errors.Is(e2, storage.ErrNotFound):
			return nil, &APIError{
				status:  http.StatusNotFound,
				Code:    ErrorCodeInvalidKey,
				Message: "File not found",
			}
		case errors.Is(e2, storage.ErrTooLarge):
			return nil, &APIError{
				status:  http.StatusRequestEntityTooLarge,
				Code:    ErrorCodeTooLarge,
				Message: "File is too large",
			}
		}
		s.log(r.Context()).Error("Error fetching object", zap.String("key", req.Key), zap.Error(e2))
		return nil, errInternal
	}

	return s.run(r.Context(), p, &validators.File{
		Name:       req.Key,
		Attribute:  attribute(req.Attribute),
		Data:       b,
		Messages:   m,
		AutoOrient: s.s.Config.AutoOrient,
	})
}

func (s *apiServer) validateSudoKey(key string) *APIError {
	valid := s.s.SudoKeyValidator(key)
	if !valid {
		return &APIError{
			status:  http.StatusUnauthorized,
			Code:    ErrorCodeInvalidKey,
			Message: "Invalid key",
		}
	}
	if s.s.DB == nil {
		return &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorCodeProfilesDisabled,
			Message: "Profiles are not configured",
		}
	}
	return nil
}

// CreateProfileRequest is used to define the create profile request.
type CreateProfileRequest struct {
	SudoKey    string `json:"sudo_key"`
	Name       string `json:"name"`
	Rules      string `json:"rules"`
	NotImage   string `json:"not_image"`
	WrongRatio string `json:"wrong_ratio"`
}

// CreateProfile is used to create a new profile.
func (s *apiServer) CreateProfile(r *http.Request, req *CreateProfileRequest) *APIError {
	// Validate the sudo key.
	err := s.validateSudoKey(req.SudoKey)
	if err != nil {
		return err
	}

	// Handle if the name is empty.
	if req.Name == "" {
		return &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorCodeInvalidProfile,
			Message: "Profile name is empty",
		}
	}

	// Make sure the rule set compiles before it is stored.
	if _, e2 := validations.Compile(req.Rules); e2 != nil {
		return &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorCodeInvalidRuleSet,
			Message: e2.Error(),
		}
	}

	// Insert the profile.
	e2 := s.s.DB.InsertProfile(r.Context(), &db.Profile{
		Name:       req.Name,
		Rules:      req.Rules,
		NotImage:   req.NotImage,
		WrongRatio: req.WrongRatio,
	})
	if e2 != nil {
		if errors.Is(e2, db.ErrProfileExists) {
			return &APIError{
				status:  http.StatusBadRequest,
				Code:    ErrorCodeProfileExists,
				Message: "Profile already exists",
			}
		}
		s.log(r.Context()).Error("Error creating profile", zap.String("profile", req.Name), zap.Error(e2))
		return errInternal
	}

	// Return success.
	return nil
}

// DeleteProfileRequest is used to define the delete profile request.
type DeleteProfileRequest struct {
	SudoKey string `json:"sudo_key"`
	Name    string `json:"name"`
}

// DeleteProfile is used to delete a profile.
func (s *apiServer) DeleteProfile(r *http.Request, req *DeleteProfileRequest) *APIError {
	// Validate the sudo key.
	err := s.validateSudoKey(req.SudoKey)
	if err != nil {
		return err
	}

	// Delete the profile.
	e2 := s.s.DB.DeleteProfile(r.Context(), req.Name)
	if e2 != nil {
		if errors.Is(e2, db.ErrProfileNotExists) {
			return &APIError{
				status:  http.StatusNotFound,
				Code:    ErrorCodeInvalidProfile,
				Message: "Profile does not exist",
			}
		}
		s.log(r.Context()).Error("Error deleting profile", zap.String("profile", req.Name), zap.Error(e2))
		return errInternal
	}
	if s.s.Profiles != nil {
		s.s.Profiles.Delete(req.Name)
	}

	// Return success.
	return nil
}

// ListProfilesRequest is used to define the list profiles request.
type ListProfilesRequest struct {
	SudoKey string `json:"sudo_key"`
}

// ListProfilesResponse is used to define the list profiles response.
type ListProfilesResponse struct {
	Profiles []*db.Profile `json:"profiles"`
}

// ListProfiles is used to list every profile.
func (s *apiServer) ListProfiles(r *http.Request, req *ListProfilesRequest) (*ListProfilesResponse, *APIError) {
	err := s.validateSudoKey(req.SudoKey)
	if err != nil {
		return nil, err
	}

	profiles, e2 := s.s.DB.ListProfiles(r.Context())
	if e2 != nil {
		s.log(r.Context()).Error("Error listing profiles", zap.Error(e2))
		return nil, errInternal
	}
	return &ListProfilesResponse{Profiles: profiles}, nil
}
