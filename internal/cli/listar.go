package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/boddenberg/licenciamento-bfa-go/internal/deadline"
	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

// ============================================================
// empresas
// ============================================================

func newCompaniesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "empresas", Short: "Empresas cadastradas"}

	var search string
	list := &cobra.Command{
		Use:   "listar",
		Short: "Lista as empresas, opcionalmente filtradas por nome ou CNPJ",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.authContext(cmd.Context())
			if err != nil {
				return err
			}
			companies, err := a.remote().companies.List(ctx, search)
			if err != nil {
				return err
			}
			if a.output() == outputJSON {
				return writeJSON(cmd.OutOrStdout(), companies)
			}
			return printCompanies(cmd.OutOrStdout(), companies)
		},
	}
	list.Flags().StringVar(&search, "busca", "", "trecho da razão social ou do CNPJ")
	cmd.AddCommand(list)
	return cmd
}

func printCompanies(w io.Writer, companies []domain.Company) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRAZÃO SOCIAL\tCNPJ\tE-MAIL")
	for _, c := range companies {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.LegalName, c.CNPJFormatted, orDash(c.Email))
	}
	return tw.Flush()
}

// ============================================================
// condicionantes
// ============================================================

func newComplianceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "condicionantes", Short: "Condicionantes das licenças"}

	var (
		licenseID int64
		status    string
		urgent    bool
		daysAhead int
	)
	list := &cobra.Command{
		Use:   "listar",
		Short: "Lista as condicionantes em ordem de urgência",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if daysAhead < 0 {
				return fmt.Errorf("--dias deve ser um inteiro não negativo")
			}
			ctx, err := a.authContext(cmd.Context())
			if err != nil {
				return err
			}

			svc := a.remote().compliance
			var views []deadline.View
			if urgent {
				views, err = svc.Urgent(ctx, daysAhead)
			} else {
				views, err = svc.List(ctx, domain.ComplianceFilter{LicenseID: licenseID, Status: status})
				if err == nil && daysAhead > 0 {
					views = deadline.WithinWindow(views, daysAhead)
				}
			}
			if err != nil {
				return err
			}

			if a.output() == outputJSON {
				return writeJSON(cmd.OutOrStdout(), views)
			}
			return printCompliance(cmd.OutOrStdout(), views)
		},
	}
	f := list.Flags()
	f.Int64Var(&licenseID, "licenca-id", 0, "somente as condicionantes desta licença")
	f.StringVar(&status, "status", "", "pendente, cumprida ou vencida")
	f.BoolVar(&urgent, "urgentes", false, "usar a lista de urgentes do backend")
	f.IntVar(&daysAhead, "dias", 0, "somente pendentes que vencem nos próximos N dias")
	cmd.AddCommand(list)
	return cmd
}

func printCompliance(w io.Writer, views []deadline.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDESCRIÇÃO\tLICENÇA\tEMPRESA\tDATA LIMITE\tDIAS\tSITUAÇÃO")
	for _, v := range views {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID,
			truncate(v.Description, 48),
			v.LicenseNumber,
			v.CompanyName,
			formatDate(v.DueDate),
			formatDays(v.DaysRemaining),
			v.Badge.Label,
		)
	}
	return tw.Flush()
}

// ============================================================
// licencas
// ============================================================

func newLicensesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "licencas", Short: "Licenças ambientais"}

	var (
		companyID int64
		status    string
	)
	list := &cobra.Command{
		Use:   "listar",
		Short: "Lista as licenças, as vigentes primeiro",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.authContext(cmd.Context())
			if err != nil {
				return err
			}
			views, err := a.remote().licenses.List(ctx, domain.LicenseFilter{CompanyID: companyID, Status: status})
			if err != nil {
				return err
			}
			if a.output() == outputJSON {
				return writeJSON(cmd.OutOrStdout(), views)
			}
			return printLicenses(cmd.OutOrStdout(), views)
		},
	}
	f := list.Flags()
	f.Int64Var(&companyID, "empresa-id", 0, "somente as licenças desta empresa")
	f.StringVar(&status, "status", "", "ativa, vencida ou cancelada")
	cmd.AddCommand(list)
	return cmd
}

func printLicenses(w io.Writer, views []deadline.LicenseView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIPO\tNÚMERO\tEMPRESA\tVENCIMENTO\tDIAS\tSITUAÇÃO")
	for _, v := range views {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID,
			v.Type,
			orDash(v.Number),
			v.CompanyName,
			formatDate(v.ExpiresOn),
			formatDays(v.DaysToExpiry),
			v.Badge.Label,
		)
	}
	return tw.Flush()
}

// ============================================================
// resumo
// ============================================================

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resumo",
		Short: "Totais do painel e próximas ações urgentes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.authContext(cmd.Context())
			if err != nil {
				return err
			}
			d, err := a.remote().dashboard.Get(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.output() == outputJSON {
				return writeJSON(out, d)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			t, al := d.Summary.Totals, d.Summary.Alerts
			fmt.Fprintf(tw, "Empresas:\t%d\n", t.Companies)
			fmt.Fprintf(tw, "Licenças:\t%d\t(%d vencendo)\n", t.Licenses, al.LicensesExpiring)
			fmt.Fprintf(tw, "Condicionantes:\t%d\t(%d vencendo, %d vencidas)\n", t.Compliance, al.ComplianceExpiring, al.ComplianceOverdue)
			if err := tw.Flush(); err != nil {
				return err
			}

			if len(d.UrgentActions) == 0 {
				_, err := fmt.Fprintln(out, "\nNenhuma ação urgente.")
				return err
			}
			fmt.Fprintln(out, "\nPróximas ações urgentes:")
			tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, act := range d.UrgentActions {
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", truncate(act.Description, 48), act.CompanyName, act.Label)
			}
			return tw.Flush()
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
