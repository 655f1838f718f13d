// Package cli is the licenciamento command line: the deadline engine offline,
// plus read-only listings straight from the licensing backend.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/client"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/observability"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/licenciamento-bfa-go/internal/service"
	"github.com/boddenberg/licenciamento-bfa-go/internal/session"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

const envPrefix = "LICENCIAMENTO"

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
)

// app carries what the subcommands share. Remote pieces are built lazily so
// the offline commands never need a backend.
type app struct {
	v      *viper.Viper
	now    func() time.Time
	logger *zap.Logger
}

// NewRootCommand creates the root command with its global flags and subcommands.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New(), now: time.Now}

	cmd := &cobra.Command{
		Use:           "licenciamento",
		Short:         "Prazos de licenças ambientais e condicionantes",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.logger = observability.NewLogger(a.v.GetString("log_level"))
			switch a.output() {
			case outputTable, outputJSON:
				return nil
			default:
				return fmt.Errorf("formato de saída inválido: %q (use table ou json)", a.v.GetString("output"))
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("api-url", "http://localhost:5000", "URL do backend de licenciamento ("+envPrefix+"_API_URL)")
	pf.String("token", "", "token Bearer do backend ("+envPrefix+"_TOKEN)")
	pf.Duration("timeout", 15*time.Second, "tempo máximo de cada chamada")
	pf.StringP("output", "o", outputTable, "formato de saída: table ou json")
	pf.String("log-level", "error", "nível de log (debug, info, warn, error)")

	for key, flag := range map[string]string{
		"api_url":   "api-url",
		"token":     "token",
		"timeout":   "timeout",
		"output":    "output",
		"log_level": "log-level",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}
	a.v.SetEnvPrefix(envPrefix)
	a.v.AutomaticEnv()

	cmd.AddCommand(
		newDeadlineCmd(a),
		newCompaniesCmd(a),
		newComplianceCmd(a),
		newLicensesCmd(a),
		newSummaryCmd(a),
	)
	return cmd
}

// Execute runs the root command.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

func (a *app) output() string {
	return strings.ToLower(a.v.GetString("output"))
}

// remote holds the services wired against the backend.
type remote struct {
	companies  *service.CompanyService
	licenses   *service.LicenseService
	compliance *service.ComplianceService
	dashboard  *service.DashboardService
}

func (a *app) remote() *remote {
	logger := a.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	backend := client.New(
		&http.Client{Timeout: a.v.GetDuration("timeout")},
		a.v.GetString("api_url"),
		resilience.NewBulkhead(4),
		logger,
	)
	return &remote{
		companies:  service.NewCompanyService(backend, nil, logger),
		licenses:   service.NewLicenseService(backend, nil, logger),
		compliance: service.NewComplianceService(backend, backend, nil, logger),
		dashboard:  service.NewDashboardService(backend, backend, nil, logger),
	}
}

// authContext attaches the configured token, if any, to ctx.
func (a *app) authContext(ctx context.Context) (context.Context, error) {
	token := a.v.GetString("token")
	if token == "" {
		return ctx, nil
	}
	sess, err := session.New(token, domain.User{}, "", time.Hour, a.now())
	if err != nil {
		return nil, err
	}
	return session.WithContext(ctx, sess), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
