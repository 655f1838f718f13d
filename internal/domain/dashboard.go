package domain

// ============================================================
// Dashboard
// ============================================================

// DashboardSummary mirrors GET /api/dashboard/resumo.
type DashboardSummary struct {
	Totals      DashboardTotals  `json:"totais"`
	Alerts      DashboardAlerts  `json:"alertas"`
	NextActions []ComplianceItem `json:"proximas_acoes"`
}

// DashboardTotals are the headline tiles.
type DashboardTotals struct {
	Companies  int `json:"empresas"`
	Licenses   int `json:"licencas"`
	Compliance int `json:"condicionantes"`
}

// DashboardAlerts count what is about to expire or already expired.
type DashboardAlerts struct {
	LicensesExpiring   int `json:"licencas_vencimento"`
	ComplianceExpiring int `json:"condicionantes_vencimento"`
	ComplianceOverdue  int `json:"condicionantes_vencidas"`
}
