package commands

import (
	"fmt"
	"strings"

	"github.com/nhle/equipment-alerts/internal/engine"
	"github.com/nhle/equipment-alerts/internal/model"
	"github.com/nhle/equipment-alerts/internal/theme"
)

const timeLayout = "2006-01-02 15:04"

func renderNotifications(notifications []model.Notification, read bool) string {
	var b strings.Builder

	title := "Unread notifications"
	if read {
		title = "Read notifications"
	}
	b.WriteString(theme.HeaderStyle.Render(fmt.Sprintf("%s (%d)", title, len(notifications))))
	b.WriteString("\n")

	if len(notifications) == 0 {
		b.WriteString(theme.MutedStyle.Render("  nothing here"))
		b.WriteString("\n")
		return b.String()
	}

	for _, n := range notifications {
		subject := ""
		if n.Equipment != nil {
			subject = fmt.Sprintf(" %s %s", n.Equipment.InventoryCode, n.Equipment.Name)
		}
		fmt.Fprintf(&b, "%s %s %s #%d %s%s\n",
			theme.ReadMarker(n.Read),
			theme.PriorityStyle(n.Priority).Render(string(n.Priority)),
			theme.KindLabelStyle(n.Kind).Render(string(n.Kind)),
			n.ID,
			n.Title,
			theme.MutedStyle.Render(subject),
		)
		b.WriteString(theme.MessageStyle.Render(n.Message))
		b.WriteString("\n")
		b.WriteString(theme.MessageStyle.Render(theme.MutedStyle.Render(n.CreatedAt.Local().Format(timeLayout))))
		b.WriteString("\n")
	}
	return b.String()
}

func renderReport(report engine.Report) string {
	var lines []string
	for _, res := range report.Results {
		line := fmt.Sprintf("%-22s created %d", res.Rule, res.Created())
		if res.Skipped() > 0 {
			line += fmt.Sprintf(", skipped %d", res.Skipped())
		}
		if err := res.Err(); err != nil {
			line += ": " + err.Error()
		}
		lines = append(lines, theme.ResultStyle(res.Succeeded()).Render(line))
	}
	lines = append(lines, fmt.Sprintf("total created %d (run %s)", report.Total, report.RunID))
	return theme.BorderStyle.Render(strings.Join(lines, "\n")) + "\n"
}
