package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/rjavier441/rjs2"
	rjshttp "github.com/rjavier441/rjs2/http"
)

// Middleware is a pre stage.
type Middleware = func(http.Handler) http.Handler

// Step is a req stage. Returning errStop ends the response without running
// the remaining steps.
type Step func(w http.ResponseWriter, r *http.Request) error

var errStop = errors.New("pipeline: response ended")

// FileReader reads the files templates are parsed from.
type FileReader interface {
	ReadFile(name string) ([]byte, error)
}

// Pipeline is the built, immutable set of stages for one mounted file.
type Pipeline struct {
	Pre []Middleware
	Req []Step
	// PreActions and ReqActions list the actions the stages were built from.
	PreActions []Action
	ReqActions []Action
	// Logger receives req stage failures that happen after the response
	// started. Nil means slog.Default().
	Logger *slog.Logger
}

// Wrap applies the pre stages around h. The first stage is the outermost.
func (p Pipeline) Wrap(h http.Handler) http.Handler {
	for i := len(p.Pre) - 1; i >= 0; i-- {
		h = p.Pre[i](h)
	}
	return h
}

// Handler returns the route handler: the req stages when there are any,
// fallback otherwise, wrapped in the pre stages.
func (p Pipeline) Handler(fallback http.Handler) http.Handler {
	if len(p.Req) == 0 {
		return p.Wrap(fallback)
	}
	return p.Wrap(runSteps(p.Req, p.Logger))
}

func runSteps(steps []Step, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		for _, step := range steps {
			err := step(ww, r)
			if err == nil {
				continue
			}
			if errors.Is(err, errStop) {
				return
			}
			if ww.Status() == 0 {
				rjshttp.HandleError(ww, err)
			} else {
				logger.Error("pipeline step failed after response started", "path", r.URL.Path, "error", err)
			}
			return
		}
	})
}

type preBuilder func(f *Factory) (Middleware, bool)

type reqBuilder func(f *Factory, file string) (Step, error)

var preBuilders = map[Action]preBuilder{
	ActionCSRFProtection: (*Factory).csrfProtection,
	ActionLoadCSRFToken:  (*Factory).loadCSRFToken,
}

var reqBuilders = map[Action]reqBuilder{
	ActionRenderTemplate: (*Factory).renderTemplate,
	ActionTerminate:      (*Factory).terminate,
}

// Factory builds pipelines from action ids.
type Factory struct {
	files  FileReader
	csrf   CSRFProvider
	meta   Meta
	logger *slog.Logger
}

// NewFactory creates a factory. files is where render stages read templates
// from; csrf may be nil, in which case CSRF actions produce no stage.
func NewFactory(files FileReader, csrf CSRFProvider, meta Meta, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		files:  files,
		csrf:   csrf,
		meta:   meta,
		logger: logger.With("src", "PipelineFactory"),
	}
}

// Build creates the pipeline for file from mc. A nil mc yields an empty
// pipeline.
func (f *Factory) Build(mc *rjs2.MountConfig, file string) (Pipeline, error) {
	if mc == nil {
		return Pipeline{Logger: f.logger}, nil
	}

	pre, preActions := f.buildPre(mc.Pre)
	req, reqActions, err := f.buildReq(mc.Req, file)
	if err != nil {
		return Pipeline{}, err
	}

	return Pipeline{Pre: pre, Req: req, PreActions: preActions, ReqActions: reqActions, Logger: f.logger}, nil
}

// BuildPre returns the pre stages for ids. When any stage is built the list
// starts with the middleware that creates the template variable bag.
func (f *Factory) BuildPre(ids []string) []Middleware {
	pre, _ := f.buildPre(ids)
	return pre
}

// BuildReq returns the req stages for ids. Building stops after terminate.
// Returns an error if file cannot be read or parsed as a template.
func (f *Factory) BuildReq(ids []string, file string) ([]Step, error) {
	req, _, err := f.buildReq(ids, file)
	return req, err
}

func (f *Factory) buildPre(ids []string) ([]Middleware, []Action) {
	var stages []Middleware
	var built []Action

	for _, id := range ids {
		action, ok := f.lookup(id, PhasePre)
		if !ok {
			continue
		}
		stage, ok := preBuilders[action](f)
		if !ok {
			continue
		}
		stages = append(stages, stage)
		built = append(built, action)
	}

	if len(stages) == 0 {
		return nil, nil
	}
	return append([]Middleware{varsMiddleware(f.meta.vars())}, stages...), built
}

func (f *Factory) buildReq(ids []string, file string) ([]Step, []Action, error) {
	var steps []Step
	var built []Action

	for i, id := range ids {
		action, ok := f.lookup(id, PhaseReq)
		if !ok {
			continue
		}
		step, err := reqBuilders[action](f, file)
		if err != nil {
			return nil, nil, err
		}
		steps = append(steps, step)
		built = append(built, action)

		if action == ActionTerminate {
			if dropped := ids[i+1:]; len(dropped) > 0 {
				f.logger.Debug("actions after terminate dropped", "file", file, "dropped", dropped)
			}
			break
		}
	}

	return steps, built, nil
}

func (f *Factory) lookup(id string, phase Phase) (Action, bool) {
	action, ok := ParseAction(id)
	if !ok {
		f.logger.Debug("unknown pipeline action ignored", "action", id, "phase", phase)
		return ActionUnknown, false
	}
	if action.Phase() != phase {
		f.logger.Debug("pipeline action ignored in wrong phase", "action", id, "phase", phase, "expected", action.Phase())
		return ActionUnknown, false
	}
	return action, true
}

func (f *Factory) csrfProtection() (Middleware, bool) {
	if f.csrf == nil {
		f.logger.Warn("csrfProtection requested without a CSRF provider")
		return nil, false
	}
	return f.csrf.Middleware(), true
}

func (f *Factory) loadCSRFToken() (Middleware, bool) {
	if f.csrf == nil {
		f.logger.Warn("ejsLoadCsrfToken requested without a CSRF provider")
		return nil, false
	}
	provider := f.csrf
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bag := VarsFrom(r.Context())
			if bag == nil {
				bag = f.meta.vars()
				r = r.WithContext(WithVars(r.Context(), bag))
			}
			bag["csrfToken"] = provider.Token(r)
			bag["csrfField"] = provider.Field(r)
			next.ServeHTTP(w, r)
		})
	}, true
}

func (f *Factory) terminate(string) (Step, error) {
	return func(w http.ResponseWriter, r *http.Request) error {
		if err := http.NewResponseController(w).Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return fmt.Errorf("flush response: %w", err)
		}
		return errStop
	}, nil
}
