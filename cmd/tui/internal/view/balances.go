package view

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/balance"
	"github.com/MrJamesThe3rd/divvy/internal/money"
)

// renderReport lays out a group's balances and the payments that settle them.
func renderReport(report *balance.GroupReport, fm *money.Formatter) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(report.GroupName))
	sb.WriteString(faintStyle.Render(fmt.Sprintf("  total spent %s", fm.Format(report.TotalSpent))))
	sb.WriteString("\n\n")

	names := make(map[uuid.UUID]string, len(report.Balances))
	width := 0

	for _, b := range report.Balances {
		names[b.MemberID] = b.Name
		width = max(width, len(b.Name))
	}

	for _, b := range report.Balances {
		status := "settled up"

		switch {
		case b.Amount > 0:
			status = "is owed " + fm.Format(b.Amount)
		case b.Amount < 0:
			status = "owes " + fm.Format(-b.Amount)
		}

		fmt.Fprintf(&sb, "%-*s  %s\n", width, b.Name, signed(b.Amount, status))
	}

	sb.WriteString("\n")

	if len(report.Settlements) == 0 {
		sb.WriteString(faintStyle.Render("Nothing to settle."))
		return sb.String()
	}

	sb.WriteString(titleStyle.Render("Suggested payments"))
	sb.WriteString("\n")

	for _, tx := range report.Settlements {
		fmt.Fprintf(&sb, "%s → %s  %s\n", names[tx.From], names[tx.To], fm.Format(tx.Amount))
	}

	return sb.String()
}
