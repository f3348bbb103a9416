package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"postboard/internal/config"
	"postboard/internal/repository"
	"postboard/internal/service"
)

type Handlers struct {
	AuthService service.AuthService
	PostService service.PostService
	Tokens      service.TokenService
	DB          repository.Pinger
	Cfg         *config.Config
	Validate    *validator.Validate
	Logger      *slog.Logger
}

func NewHandlers(repo *repository.Repository, services *service.Service, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		AuthService: services.Auth,
		PostService: services.Post,
		Tokens:      services.Token,
		DB:          repo.DB,
		Cfg:         cfg,
		Validate:    newValidator(),
		Logger:      logger,
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

const maxBodyBytes = 1 << 20

// decodeJSON reads at most maxBodyBytes of the request body into dst and
// writes the error response itself when decoding fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, msgBodyTooLarge, http.StatusRequestEntityTooLarge)
			return false
		}
		writeFieldErrors(w, FieldError{Msg: msgInvalidBody})
		return false
	}
	return true
}
