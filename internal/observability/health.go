package observability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Sumatoshi-tech/csstree/pkg/lexer"
	"github.com/Sumatoshi-tech/csstree/pkg/version"
)

const (
	healthStatusOK          = "ok"
	healthStatusUnavailable = "unavailable"
)

// ErrBrokenDictionary indicates syntaxes that reference undefined types or properties.
var ErrBrokenDictionary = errors.New("syntax dictionary has broken references")

// ReadyCheck is a named readiness probe. Check returns nil when the
// subsystem can serve requests.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthReport is the body of /healthz and /readyz.
type HealthReport struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthHandler returns an [http.Handler] for liveness checks at /healthz.
// It always answers 200 with the running version.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		writeHealth(rw, http.StatusOK, HealthReport{Status: healthStatusOK, Version: version.Version})
	})
}

// ReadyHandler returns an [http.Handler] for readiness checks at /readyz.
// Every check runs; the report lists each outcome by name and the status
// is 503 when any of them failed.
func ReadyHandler(checks ...ReadyCheck) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		report := HealthReport{Status: healthStatusOK, Version: version.Version}
		code := http.StatusOK

		if len(checks) > 0 {
			report.Checks = make(map[string]string, len(checks))
		}

		for _, check := range checks {
			err := check.Check(hr.Context())
			if err != nil {
				report.Checks[check.Name] = err.Error()
				report.Status = healthStatusUnavailable
				code = http.StatusServiceUnavailable

				continue
			}

			report.Checks[check.Name] = healthStatusOK
		}

		writeHealth(rw, code, report)
	})
}

// DictionaryCheck reports the syntax dictionary of lex as not ready while
// any of its syntaxes reference undefined types or properties.
func DictionaryCheck(lex *lexer.Lexer) ReadyCheck {
	return ReadyCheck{
		Name: "dictionary",
		Check: func(context.Context) error {
			broken := lex.Validate()
			if broken == nil {
				return nil
			}

			return fmt.Errorf("%w: %d type(s), %d property(ies)",
				ErrBrokenDictionary, len(broken.Types), len(broken.Properties))
		},
	}
}

func writeHealth(rw http.ResponseWriter, code int, report HealthReport) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)

	data, err := json.Marshal(report)
	if err != nil {
		return
	}

	_, _ = rw.Write(data)
}
