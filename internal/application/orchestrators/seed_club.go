package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"clubdash/internal/domain/member"
	"clubdash/internal/domain/schedule"
)

// CatalogStoreForSeed defines the store interface needed by SeedCatalog.
type CatalogStoreForSeed interface {
	Save(ctx context.Context, t schedule.Template) error
	Count(ctx context.Context) (int, error)
}

// MemberStoreForSeed defines the store interface needed by SeedMembers.
type MemberStoreForSeed interface {
	Save(ctx context.Context, p member.Profile) error
	Count(ctx context.Context) (int, error)
}

// DefaultCatalog is the weekly timetable a new club starts with.
func DefaultCatalog() []schedule.Template {
	t := func(id, name string, day int, start string, mins, capacity int, level, typ, coach string, difficulty int) schedule.Template {
		return schedule.Template{
			ID: id, Name: name, DayOfWeek: day, StartTime: start, DurationMinutes: mins,
			Capacity: capacity, Level: level, Type: typ, Coach: coach,
			Location: "Main mat", Color: "blue", Recurring: true, Difficulty: difficulty,
		}
	}
	catalog := []schedule.Template{
		t("mon-0630-fundamentals", "Fundamentals", 1, "06:30", 60, 20, schedule.LevelBeginner, "gi", "Pat", 1),
		t("mon-1800-fundamentals", "Fundamentals", 1, "18:00", 60, 2, schedule.LevelBeginner, "gi", "Pat", 1),
		t("mon-1915-nogi", "No-Gi", 1, "19:15", 75, 24, schedule.LevelAllLevels, "no-gi", "Sam", 3),
		t("tue-1800-advanced", "Advanced Gi", 2, "18:00", 90, 16, schedule.LevelAdvanced, "gi", "Alex", 4),
		t("wed-1200-lunch", "Lunchtime Drilling", 3, "12:00", 45, 12, schedule.LevelAllLevels, "gi", "Pat", 2),
		t("wed-1930-competition", "Competition Team", 3, "19:30", 90, 12, schedule.LevelAdvanced, "no-gi", "Alex", 5),
		t("thu-1800-selfdefense", "Self Defence", 4, "18:00", 60, 20, schedule.LevelBeginner, "self-defense", "Jordan", 1),
		t("fri-1800-intermediate", "Intermediate Gi", 5, "18:00", 60, 20, schedule.LevelIntermediate, "gi", "Sam", 3),
		t("sat-1000-openmat", "Open Mat", 6, "10:00", 120, 30, schedule.LevelAllLevels, "open-mat", "Sam", 2),
		t("sun-0900-conditioning", "Conditioning", 0, "09:00", 45, 15, schedule.LevelAllLevels, "fitness", "Jordan", 3),
	}
	catalog[0].Description = "Core **gi** techniques for new members. Bring a gi and water."
	catalog[0].RequiredEquipment = []string{"gi"}
	catalog[1].Description = "Core **gi** techniques. Small group, book early."
	catalog[1].RequiredEquipment = []string{"gi"}
	catalog[2].Description = "Takedowns, leg locks and positional sparring.\n\n- rashguard\n- shorts"
	catalog[2].RequiredEquipment = []string{"rashguard"}
	catalog[5].Description = "Hard rounds and match simulation. *Coach approval required.*"
	catalog[5].Color = "red"
	catalog[8].Description = "Free rolling. All members welcome."
	catalog[8].Location = "Both mats"
	return catalog
}

// DemoMembers are the profiles seeded for development.
func DemoMembers() []member.Profile {
	p := func(id, name, belt string, focus []string, days []int, sessions, streak, improvement, wins int) member.Profile {
		return member.Profile{
			ID: id, Name: name, Email: id + "@example.com", Belt: belt, Status: member.StatusActive,
			TrainingFocus: focus,
			Availability:  member.Availability{Days: days},
			Stats:         member.Stats{ThisMonthSessions: sessions, Streak: streak, Improvement: improvement, CompetitionWins: wins},
		}
	}
	return []member.Profile{
		p("aroha", "Aroha Ngata", member.BeltBlue, []string{member.FocusGi, member.FocusCompetition}, []int{1, 3, 6}, 14, 9, 12, 3),
		p("ben", "Ben Carter", member.BeltWhite, []string{member.FocusGi, member.FocusFitness}, []int{1, 4}, 8, 3, 25, 0),
		p("chen", "Chen Wei", member.BeltBlue, []string{member.FocusNoGi, member.FocusCompetition}, []int{1, 3, 5}, 16, 12, 8, 5),
		p("dana", "Dana Okafor", member.BeltBrown, []string{member.FocusTechnique, member.FocusGi}, []int{2, 6}, 10, 20, 4, 7),
		p("eli", "Eli Martin", member.BeltWhite, []string{member.FocusSelfDefense}, []int{4}, 4, 1, 30, 0),
		p("farah", "Farah Said", member.BeltGreen, []string{member.FocusNoGi, member.FocusFitness}, []int{0, 1, 3}, 12, 6, 15, 1),
	}
}

// SeedDeps holds dependencies for seeding.
type SeedDeps struct {
	Catalog CatalogStoreForSeed
	Members MemberStoreForSeed // optional
}

// ExecuteSeedCatalog stores DefaultCatalog when the catalog is empty.
// POST: an existing catalog is never touched
func ExecuteSeedCatalog(ctx context.Context, deps SeedDeps) error {
	n, err := deps.Catalog.Count(ctx)
	if err != nil {
		return fmt.Errorf("count classes: %w", err)
	}
	if n > 0 {
		return nil
	}
	catalog := DefaultCatalog()
	for _, t := range catalog {
		if err := t.Validate(); err != nil {
			return err
		}
		if err := deps.Catalog.Save(ctx, t); err != nil {
			return fmt.Errorf("seed class %s: %w", t.ID, err)
		}
	}
	slog.Info("catalog_seeded", "classes", len(catalog))
	return nil
}

// ExecuteSeedMembers stores DemoMembers when no members exist.
func ExecuteSeedMembers(ctx context.Context, deps SeedDeps) error {
	if deps.Members == nil {
		return nil
	}
	n, err := deps.Members.Count(ctx)
	if err != nil {
		return fmt.Errorf("count members: %w", err)
	}
	if n > 0 {
		return nil
	}
	members := DemoMembers()
	for _, m := range members {
		if err := m.Validate(); err != nil {
			return err
		}
		if err := deps.Members.Save(ctx, m); err != nil {
			return fmt.Errorf("seed member %s: %w", m.ID, err)
		}
	}
	slog.Info("members_seeded", "members", len(members))
	return nil
}
