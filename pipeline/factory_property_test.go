//go:build property
// +build property

package pipeline_test

import (
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/rjavier441/rjs2"
	"github.com/rjavier441/rjs2/pipeline"
)

func TestFactoryProperties(t *testing.T) {
	src := newSource(t, map[string]string{"page.html": "<p>{{.title}}</p>"})
	f := pipeline.NewFactory(src, &fakeCSRF{}, pipeline.Meta{}, nil)
	ids := []any{"csrfProtection", "ejsLoadCsrfToken", "ejsRenderAndSendTemplate", "terminate", "unknown", ""}

	properties := gopter.NewProperties(nil)

	// Property: nothing is built after terminate
	properties.Property("terminate is last", prop.ForAll(
		func(req []string) bool {
			p, err := f.Build(&rjs2.MountConfig{Req: req}, "/page.html")
			if err != nil {
				return false
			}
			i := slices.Index(p.ReqActions, pipeline.ActionTerminate)
			return i == -1 || i == len(p.ReqActions)-1
		},
		gen.SliceOfN(8, gen.OneConstOf(ids...)),
	))

	// Property: every built action belongs to its phase
	properties.Property("phases respected", prop.ForAll(
		func(pre, req []string) bool {
			p, err := f.Build(&rjs2.MountConfig{Pre: pre, Req: req}, "/page.html")
			if err != nil {
				return false
			}
			for _, a := range p.PreActions {
				if a.Phase() != pipeline.PhasePre {
					return false
				}
			}
			for _, a := range p.ReqActions {
				if a.Phase() != pipeline.PhaseReq {
					return false
				}
			}
			return len(p.Req) == len(p.ReqActions) &&
				(len(p.PreActions) == 0 && len(p.Pre) == 0 || len(p.Pre) == len(p.PreActions)+1)
		},
		gen.SliceOfN(5, gen.OneConstOf(ids...)),
		gen.SliceOfN(5, gen.OneConstOf(ids...)),
	))

	properties.TestingRun(t)
}
