package backup

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/sadopc/lunafocus/internal/datekey"
	"github.com/sadopc/lunafocus/internal/habit"
	"github.com/sadopc/lunafocus/internal/sheetsync"
)

// WriteCSV writes one row per day that has focus minutes or a habit status.
func (s *Service) WriteCSV(ctx context.Context, path string) error {
	doc, err := s.Export(ctx)
	if err != nil {
		return err
	}
	return ToCSV(doc.Habits, doc.FocusStats, path)
}

// ToCSV writes the ledgers to path, oldest day first.
func ToCSV(habits map[datekey.Key]habit.Status, stats map[datekey.Key]int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Date", "Remote Date", "Focus (min)", "Focus", "Habit"}); err != nil {
		return err
	}

	for _, day := range days(habits, stats) {
		status := sheetsync.NotDone
		if st, ok := habits[day]; ok && st != habit.None {
			status = string(st)
		}
		row := []string{
			day.String(),
			day.Remote(),
			strconv.Itoa(stats[day]),
			formatMinutes(stats[day]),
			status,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func days(habits map[datekey.Key]habit.Status, stats map[datekey.Key]int) []datekey.Key {
	seen := make(map[datekey.Key]bool, len(habits)+len(stats))
	for d := range habits {
		seen[d] = true
	}
	for d := range stats {
		seen[d] = true
	}
	out := make([]datekey.Key, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

func formatMinutes(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
