// Package responsetransformer rewrites the caching headers of origin
// responses according to configured rules.
package responsetransformer

import (
	"net/http"
	"strings"

	"github.com/always-cache/respcache/response"

	"github.com/rs/zerolog"
)

type Rules []Rule

type Rule struct {
	Prefix   string            `yaml:"prefix"`
	Path     string            `yaml:"path"`
	Method   string            `yaml:"method"`
	Default  string            `yaml:"default"`
	Override string            `yaml:"override"`
	Query    map[string]string `yaml:"query"`
	Headers  map[string]string `yaml:"headers"`
}

// Response is what a rule can be applied to.
type Response interface {
	response.HeaderAccessor
	Status() int
}

// Apply applies the first matching rule to res.
// Errors from the response, e.g. response.ErrImmutable, are returned as is.
// It logs to the logger of the request context (see zerolog.Ctx).
func (r Rules) Apply(req *http.Request, res Response) error {
	// only apply rules for successes
	if res.Status() != http.StatusOK {
		return nil
	}
	log := zerolog.Ctx(req.Context())
	// if rule found, apply to response
	if rule := r.find(req, log); rule != nil {
		return applyRuleToResponse(*rule, res, log)
	}
	return nil
}

func applyRuleToResponse(rule Rule, res response.HeaderAccessor, log *zerolog.Logger) error {
	if rule.Override != "" {
		log.Trace().Msg("Overriding Cache-Control header")
		if err := res.Set("Cache-Control", rule.Override); err != nil {
			return err
		}
	} else if _, ok := res.Get("Cache-Control"); rule.Default != "" && !ok {
		log.Trace().Msg("Applying default Cache-Control header")
		if err := res.Set("Cache-Control", rule.Default); err != nil {
			return err
		}
	}
	for name, value := range rule.Headers {
		log.Trace().Msgf("Setting header %s", name)
		if err := res.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

func (r Rules) find(req *http.Request, log *zerolog.Logger) *Rule {
	log.Trace().Msgf("Finding rule for request %s:%s", req.Method, req.URL.Path)
rulesLoop:
	for _, rule := range r {
		if rule.Method == "" && req.Method != http.MethodGet {
			continue
		}
		if rule.Method != "" && rule.Method != req.Method {
			continue
		}
		if rule.Path != "" && rule.Path != req.URL.Path {
			continue
		}
		if rule.Prefix != "" && !strings.HasPrefix(req.URL.Path, rule.Prefix) {
			continue
		}
		if len(rule.Query) > 0 {
			qry := req.URL.Query()
			for name, value := range rule.Query {
				if value == "" && !qry.Has(name) {
					continue rulesLoop
				} else if value != "" && qry.Get(name) != value {
					continue rulesLoop
				}
			}
		}
		// only GET responses are stored, so rules for other methods never apply
		if rule.Method != "" && rule.Method != http.MethodGet {
			log.Warn().Str("method", rule.Method).Msg("Non-GET method rules not supported")
			continue
		}
		return &rule
	}
	return nil
}
