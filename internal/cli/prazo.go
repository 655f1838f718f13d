package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/boddenberg/licenciamento-bfa-go/internal/deadline"
	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

// DeadlineResult is the outcome of "prazo calcular".
type DeadlineResult struct {
	DueDate       domain.Date    `json:"data_limite"`
	DaysRemaining *int           `json:"dias_restantes"`
	Urgency       deadline.Tier  `json:"urgencia"`
	Badge         deadline.Badge `json:"badge"`
	Basis         string         `json:"base"`
}

func newDeadlineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prazo",
		Short: "Motor de prazos (offline)",
	}
	cmd.AddCommand(newDeadlineCalcCmd(a))
	return cmd
}

func newDeadlineCalcCmd(a *app) *cobra.Command {
	var (
		issuedOn  string
		expiresOn string
		manual    string
		offset    string
		renewal   bool
		fulfilled string
		today     string
	)

	cmd := &cobra.Command{
		Use:   "calcular",
		Short: "Calcula a data limite, os dias restantes e a urgência de uma condicionante",
		Example: `  licenciamento prazo calcular --vencimento 2025-12-31 --renovacao
  licenciamento prazo calcular --emissao 2025-01-01 --prazo-dias 30 --hoje 2025-01-20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			modes := 0
			for _, set := range []bool{renewal, offset != "", manual != ""} {
				if set {
					modes++
				}
			}
			if modes != 1 {
				return fmt.Errorf("informe exatamente um de --renovacao, --prazo-dias ou --data-limite")
			}

			license := &domain.License{
				IssuedOn:  parseOptionalDate(issuedOn),
				ExpiresOn: parseOptionalDate(expiresOn),
			}
			in := deadline.DueInput{RenewalLinked: renewal, ManualDueDate: parseOptionalDate(manual)}
			basis := "data informada"
			switch {
			case renewal:
				if license.ExpiresOn.IsZero() {
					return fmt.Errorf("--renovacao exige --vencimento")
				}
				basis = fmt.Sprintf("vencimento da licença menos %d dias", deadline.RenewalLeadDays)
			case offset != "":
				n, ok := deadline.ParseOffsetDays(offset)
				if !ok {
					return fmt.Errorf("--prazo-dias deve ser um inteiro não negativo")
				}
				if license.IssuedOn.IsZero() {
					return fmt.Errorf("--prazo-dias exige --emissao")
				}
				in.OffsetDays = n
				basis = fmt.Sprintf("emissão da licença mais %d dias", *n)
			case in.ManualDueDate.IsZero():
				return fmt.Errorf("--data-limite inválida, use AAAA-MM-DD")
			}

			now := a.now()
			if today != "" {
				d, ok := domain.ParseDate(today)
				if !ok {
					return fmt.Errorf("--hoje inválida, use AAAA-MM-DD")
				}
				now = d.Time()
			}

			item := domain.ComplianceItem{
				DueDate:     deadline.EffectiveDueDate(in, license),
				FulfilledOn: parseOptionalDate(fulfilled),
			}
			view := deadline.NewView(item, now)
			res := DeadlineResult{
				DueDate:       view.DueDate,
				DaysRemaining: view.DaysRemaining,
				Urgency:       view.Urgency,
				Badge:         view.Badge,
				Basis:         basis,
			}
			return printDeadline(cmd, a, res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&issuedOn, "emissao", "", "data de emissão da licença (AAAA-MM-DD)")
	f.StringVar(&expiresOn, "vencimento", "", "data de vencimento da licença (AAAA-MM-DD)")
	f.StringVar(&manual, "data-limite", "", "data limite informada manualmente (AAAA-MM-DD)")
	f.StringVar(&offset, "prazo-dias", "", "dias após a emissão da licença")
	f.BoolVar(&renewal, "renovacao", false, "vincular à renovação da licença")
	f.StringVar(&fulfilled, "cumprida-em", "", "data de cumprimento, se já cumprida (AAAA-MM-DD)")
	f.StringVar(&today, "hoje", "", "data de referência (padrão: hoje, UTC)")
	return cmd
}

func printDeadline(cmd *cobra.Command, a *app, res DeadlineResult) error {
	out := cmd.OutOrStdout()
	if a.output() == outputJSON {
		return writeJSON(out, res)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Data limite:\t%s\n", formatDate(res.DueDate))
	fmt.Fprintf(tw, "Base:\t%s\n", res.Basis)
	fmt.Fprintf(tw, "Dias restantes:\t%s\n", formatDays(res.DaysRemaining))
	fmt.Fprintf(tw, "Situação:\t%s\n", res.Badge.Label)
	return tw.Flush()
}

func parseOptionalDate(s string) domain.Date {
	d, _ := domain.ParseDate(s)
	return d
}

// formatDate renders a date the Brazilian way, "-" when absent.
func formatDate(d domain.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Time().Format("02/01/2006")
}

func formatDays(days *int) string {
	if days == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *days)
}
