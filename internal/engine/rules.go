package engine

import (
	"context"
	"fmt"

	"github.com/nhle/equipment-alerts/internal/model"
	"github.com/nhle/equipment-alerts/internal/store"
)

// Rule names as they appear in run reports.
const (
	RuleUpcomingMaintenance = "upcoming_maintenance"
	RuleWarrantyExpiring    = "warranty_expiring"
	RuleObsolescence        = "obsolescence"
	RuleOverdueMaintenance  = "overdue_maintenance"
)

const (
	warrantyWindowDays = 30
	obsolescenceDays   = 5 * 365
)

// Evaluation is what a rule found in one pass over the store.
type Evaluation struct {
	Candidates []model.Notification

	// Skipped counts records ignored because a stored date did not parse.
	Skipped   int
	Anomalies []error
}

func (ev *Evaluation) skip(err error) {
	ev.Skipped++
	ev.Anomalies = append(ev.Anomalies, err)
}

// Rule is a predicate over stored records plus the template for the
// notification it produces. Evaluate must not write to the store.
type Rule struct {
	Name     string
	Kind     model.NotificationKind
	Evaluate func(ctx context.Context, s store.Store, today model.Date) (Evaluation, error)
}

// DefaultRules returns the four built-in rules, with the given look-ahead
// window for upcoming maintenance.
func DefaultRules(maintenanceWindow int) []Rule {
	return []Rule{
		UpcomingMaintenance(maintenanceWindow),
		WarrantyExpiring(),
		Obsolescence(),
		OverdueMaintenance(),
	}
}

// UpcomingMaintenance fires for scheduled tasks due within [today, today+days].
func UpcomingMaintenance(days int) Rule {
	return Rule{
		Name: RuleUpcomingMaintenance,
		Kind: model.KindMaintenanceUpcoming,
		Evaluate: func(ctx context.Context, s store.Store, today model.Date) (Evaluation, error) {
			status := model.MaintenanceScheduled
			to := today.AddDays(days)
			tasks, err := s.GetMaintenanceTasks(ctx, store.MaintenanceFilter{
				Status:        &status,
				ScheduledFrom: &today,
				ScheduledTo:   &to,
			})
			if err != nil {
				return Evaluation{}, fmt.Errorf("finding upcoming maintenance: %w", err)
			}

			var ev Evaluation
			for _, t := range tasks {
				if _, err := t.ScheduledDate.Time(); err != nil {
					ev.skip(fmt.Errorf("maintenance task %d: %w", t.ID, err))
					continue
				}
				ev.Candidates = append(ev.Candidates, maintenanceNotification(t,
					model.KindMaintenanceUpcoming,
					model.PriorityMedium,
					"Upcoming scheduled maintenance",
					fmt.Sprintf("Equipment '%s' has %s maintenance scheduled for %s",
						t.EquipmentName(), t.Kind, t.ScheduledDate),
				))
			}
			return ev, nil
		},
	}
}

// WarrantyExpiring fires for equipment whose warranty ends within the next
// 30 days, today included.
func WarrantyExpiring() Rule {
	return Rule{
		Name: RuleWarrantyExpiring,
		Kind: model.KindWarrantyExpiring,
		Evaluate: func(ctx context.Context, s store.Store, today model.Date) (Evaluation, error) {
			to := today.AddDays(warrantyWindowDays)
			equipment, err := s.GetEquipment(ctx, store.EquipmentFilter{
				WarrantyEndFrom: &today,
				WarrantyEndTo:   &to,
			})
			if err != nil {
				return Evaluation{}, fmt.Errorf("finding expiring warranties: %w", err)
			}

			now, _ := today.Time()
			var ev Evaluation
			for _, e := range equipment {
				if e.WarrantyEnd == nil {
					continue
				}
				end, err := e.WarrantyEnd.Time()
				if err != nil {
					ev.skip(fmt.Errorf("equipment %d warranty end: %w", e.ID, err))
					continue
				}
				ev.Candidates = append(ev.Candidates, equipmentNotification(e,
					model.KindWarrantyExpiring,
					model.PriorityHigh,
					"Warranty expiring soon",
					fmt.Sprintf("Warranty for equipment '%s' (%s) expires in %d days (on %s)",
						e.Name, e.InventoryCode, model.DaysBetween(now, end), *e.WarrantyEnd),
				))
			}
			return ev, nil
		},
	}
}

// Obsolescence fires for operational equipment purchased more than five
// years (5×365 days) ago.
func Obsolescence() Rule {
	return Rule{
		Name: RuleObsolescence,
		Kind: model.KindObsolescence,
		Evaluate: func(ctx context.Context, s store.Store, today model.Date) (Evaluation, error) {
			status := model.EquipmentOperational
			cutoff := today.AddDays(-obsolescenceDays)
			equipment, err := s.GetEquipment(ctx, store.EquipmentFilter{
				Status:          &status,
				PurchasedBefore: &cutoff,
			})
			if err != nil {
				return Evaluation{}, fmt.Errorf("finding obsolete equipment: %w", err)
			}

			now, _ := today.Time()
			var ev Evaluation
			for _, e := range equipment {
				if e.PurchaseDate == nil {
					continue
				}
				purchased, err := e.PurchaseDate.Time()
				if err != nil {
					ev.skip(fmt.Errorf("equipment %d purchase date: %w", e.ID, err))
					continue
				}
				age := model.DaysBetween(purchased, now)
				if age <= obsolescenceDays {
					continue
				}
				ev.Candidates = append(ev.Candidates, equipmentNotification(e,
					model.KindObsolescence,
					model.PriorityMedium,
					"Obsolete equipment detected",
					fmt.Sprintf("Equipment '%s' (%s) is %d years old. Consider replacing it.",
						e.Name, e.InventoryCode, age/365),
				))
			}
			return ev, nil
		},
	}
}

// OverdueMaintenance fires for scheduled tasks whose date is before today.
func OverdueMaintenance() Rule {
	return Rule{
		Name: RuleOverdueMaintenance,
		Kind: model.KindMaintenanceOverdue,
		Evaluate: func(ctx context.Context, s store.Store, today model.Date) (Evaluation, error) {
			status := model.MaintenanceScheduled
			tasks, err := s.GetMaintenanceTasks(ctx, store.MaintenanceFilter{
				Status:          &status,
				ScheduledBefore: &today,
			})
			if err != nil {
				return Evaluation{}, fmt.Errorf("finding overdue maintenance: %w", err)
			}

			now, _ := today.Time()
			var ev Evaluation
			for _, t := range tasks {
				scheduled, err := t.ScheduledDate.Time()
				if err != nil {
					ev.skip(fmt.Errorf("maintenance task %d: %w", t.ID, err))
					continue
				}
				ev.Candidates = append(ev.Candidates, maintenanceNotification(t,
					model.KindMaintenanceOverdue,
					model.PriorityHigh,
					"Maintenance overdue",
					fmt.Sprintf("The %s maintenance of equipment '%s' is %d days overdue (scheduled for %s)",
						t.Kind, t.EquipmentName(), model.DaysBetween(scheduled, now), t.ScheduledDate),
				))
			}
			return ev, nil
		},
	}
}

func maintenanceNotification(
	t model.MaintenanceTask,
	kind model.NotificationKind,
	priority model.Priority,
	title, message string,
) model.Notification {
	equipmentID, maintenanceID := t.EquipmentID, t.ID
	return model.Notification{
		Kind:          kind,
		Title:         title,
		Message:       message,
		Priority:      priority,
		EquipmentID:   &equipmentID,
		MaintenanceID: &maintenanceID,
	}
}

func equipmentNotification(
	e model.Equipment,
	kind model.NotificationKind,
	priority model.Priority,
	title, message string,
) model.Notification {
	equipmentID := e.ID
	return model.Notification{
		Kind:        kind,
		Title:       title,
		Message:     message,
		Priority:    priority,
		EquipmentID: &equipmentID,
	}
}
