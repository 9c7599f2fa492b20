package console

import (
	"context"
	"strings"

	"github.com/h44z/sms-portal/internal/domain"
)

func (s *Shell) wireServicesView(ctx context.Context, p *Page) error {
	status := NewListView(p, "status", ignoreFilter(s.gw.ServiceStatus), renderServiceStatus)

	NewFormAction(p, "config",
		func(Values) (struct{}, error) { return struct{}{}, nil },
		func(ctx context.Context, _ struct{}) (string, error) {
			cfg, err := s.gw.ServiceConfig(ctx)
			if err != nil {
				return "", err
			}
			p.Mount("config", Text{Text: cfg.Indent()})
			p.SetDefaults("update", Values{"Config": {string(cfg)}})
			return "", nil
		},
	).Register()

	NewFormAction(p, "update",
		func(values Values) (domain.ServiceConfig, error) {
			return domain.ParseServiceConfig(values.Get("Config"))
		},
		func(ctx context.Context, cfg domain.ServiceConfig) (string, error) {
			if err := s.gw.UpdateServiceConfig(ctx, cfg); err != nil {
				return "", err
			}
			p.Mount("config", Text{Text: cfg.Indent()})
			return "Configuration updated.", nil
		},
		status.Refresher(noFilter),
	).Register()

	_ = status.Refresh(ctx, noFilter())
	return nil
}

func renderServiceStatus(services []domain.ServiceStatus) Component {
	t := Table{
		Columns: []string{"Program", "Status", "Ok"},
		Empty:   "No services reported.",
	}
	for _, svc := range services {
		ok := "no"
		if svc.Ok {
			ok = "yes"
		}
		t.Rows = append(t.Rows, []string{svc.Program, strings.TrimSpace(svc.Status), ok})
	}
	return t
}
