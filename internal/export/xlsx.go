package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"occupancy/internal/calendar"
	"occupancy/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	gridSheet     = "Occupancy"
	bookingsSheet = "Bookings"
	firstDayCol   = 2
	firstRoomRow  = 3
)

var bookingColumns = []string{"ID", "Room", "Guest", "Source", "Check-in", "Check-out", "Nights", "Adults", "Children", "Price", "Phone", "Email", "Notes"}

// WriteXLSX writes the grid (one row per lane, one column per day) and a
// flat booking list.
func WriteXLSX(w io.Writer, snap *calendar.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(gridSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := writeGrid(f, snap); err != nil {
		return err
	}
	if err := writeBookingList(f, snap); err != nil {
		return err
	}
	_ = f.DeleteSheet("Sheet1")

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes the workbook under dir and returns its path.
func SaveXLSX(dir string, snap *calendar.Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(snap, "xlsx"))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := WriteXLSX(file, snap); err != nil {
		return "", err
	}
	return path, file.Close()
}

// FileName is the download name for a snapshot, e.g. occupancy_2024-03-01_2024-03-31.xlsx.
func FileName(snap *calendar.Snapshot, ext string) string {
	return fmt.Sprintf("occupancy_%s_%s.%s",
		snap.Window.Start.Format(models.DateLayout),
		snap.Window.End.Format(models.DateLayout),
		ext)
}

func writeGrid(f *excelize.File, snap *calendar.Snapshot) error {
	days := snap.Window.Days()
	lastCol, _ := excelize.ColumnNumberToName(firstDayCol + max(days, 1) - 1)

	_ = f.SetCellValue(gridSheet, "A1", fmt.Sprintf("Occupancy: %s - %s",
		snap.Window.Start.Format("02.01.2006"), snap.Window.End.Format("02.01.2006")))
	_ = f.MergeCell(gridSheet, "A1", lastCol+"1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(gridSheet, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for d := 0; d < days; d++ {
		cell, _ := excelize.CoordinatesToCellName(firstDayCol+d, 2)
		_ = f.SetCellValue(gridSheet, cell, snap.Window.Start.AddDate(0, 0, d).Format("02.01"))
		_ = f.SetCellStyle(gridSheet, cell, cell, headerStyle)
	}

	roomStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Vertical: "top"},
	})
	barStyles := map[string]int{}

	row := firstRoomRow
	for _, rl := range snap.Rows() {
		lanes := max(rl.LaneCount, 1)

		label, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(gridSheet, label, rl.Room)
		if lanes > 1 {
			bottom, _ := excelize.CoordinatesToCellName(1, row+lanes-1)
			_ = f.MergeCell(gridSheet, label, bottom)
		}
		_ = f.SetCellStyle(gridSheet, label, label, roomStyle)

		for _, bar := range rl.Bars {
			start, _ := excelize.CoordinatesToCellName(firstDayCol+bar.StartOffsetDays, row+bar.Lane)
			end, _ := excelize.CoordinatesToCellName(firstDayCol+bar.EndOffsetDays()-1, row+bar.Lane)
			_ = f.SetCellValue(gridSheet, start, barLabel(bar.Booking))
			if end != start {
				if err := f.MergeCell(gridSheet, start, end); err != nil {
					return fmt.Errorf("merge %s:%s: %w", start, end, err)
				}
			}

			style, err := barStyle(f, barStyles, bar.Booking.Source)
			if err != nil {
				return err
			}
			_ = f.SetCellStyle(gridSheet, start, end, style)
		}
		row += lanes
	}

	_ = f.SetColWidth(gridSheet, "A", "A", 20)
	if days > 0 {
		first, _ := excelize.ColumnNumberToName(firstDayCol)
		_ = f.SetColWidth(gridSheet, first, lastCol, 6)
	}
	return nil
}

func barStyle(f *excelize.File, cache map[string]int, source string) (int, error) {
	color := SourceColor(source)
	if id, ok := cache[color]; ok {
		return id, nil
	}
	id, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Font:      &excelize.Font{Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", ShrinkToFit: true},
		Border: []excelize.Border{
			{Type: "left", Color: "#FFFFFF", Style: 2},
			{Type: "right", Color: "#FFFFFF", Style: 2},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("error creating style: %w", err)
	}
	cache[color] = id
	return id, nil
}

func writeBookingList(f *excelize.File, snap *calendar.Snapshot) error {
	if _, err := f.NewSheet(bookingsSheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	for i, h := range bookingColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bookingsSheet, cell, h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastHeader, _ := excelize.CoordinatesToCellName(len(bookingColumns), 1)
	_ = f.SetCellStyle(bookingsSheet, "A1", lastHeader, headerStyle)

	row := 2
	for _, rl := range snap.Rows() {
		for _, bar := range rl.Bars {
			b := bar.Booking
			values := []any{
				b.ID, b.Room, b.GuestName, b.Source,
				dateCell(b.StartDate), dateCell(b.EndDate), b.Nights(),
				intCell(b.NumAdult), intCell(b.NumChild), floatCell(b.Price),
				b.Phone, b.Email, stringCell(b.Notes),
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(bookingsSheet, cell, &values); err != nil {
				return fmt.Errorf("write booking row: %w", err)
			}
			row++
		}
	}

	_ = f.SetColWidth(bookingsSheet, "A", "A", 38)
	_ = f.SetColWidth(bookingsSheet, "B", "D", 18)
	_ = f.SetColWidth(bookingsSheet, "E", "F", 12)
	return nil
}

func dateCell(t *time.Time) any {
	if t == nil {
		return ""
	}
	return t.Format(models.DateLayout)
}

func intCell(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func floatCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func stringCell(v *string) any {
	if v == nil {
		return ""
	}
	return *v
}
