package inventory

import (
	"fmt"
	"strings"

	"github.com/Domenick1991/airreservation/config"
	"github.com/Domenick1991/airreservation/internal/domain"
)

// Layout is the static cabin of an aircraft model, in seat-map order.
type Layout struct {
	Model string
	Seats []domain.Seat
	index map[string]int
}

// NewLayout builds rows×columns seats; the first businessRows rows are Business.
func NewLayout(model string, rows int, columns string, businessRows int) (*Layout, error) {
	if model == "" || rows <= 0 || columns == "" {
		return nil, fmt.Errorf("layout %q: rows and columns are required", model)
	}
	if businessRows < 0 || businessRows > rows {
		return nil, fmt.Errorf("layout %q: business rows out of range", model)
	}

	l := &Layout{Model: model, index: make(map[string]int, rows*len(columns))}
	for row := 1; row <= rows; row++ {
		class := domain.SeatClassEconomy
		if row <= businessRows {
			class = domain.SeatClassBusiness
		}
		for _, col := range columns {
			seatNo := fmt.Sprintf("%d%c", row, col)
			l.index[seatNo] = len(l.Seats)
			l.Seats = append(l.Seats, domain.Seat{
				SeatNo:    seatNo,
				Class:     class,
				Row:       row,
				Column:    string(col),
				SeatState: domain.SeatState{Status: domain.SeatStatusAvailable},
			})
		}
	}
	return l, nil
}

// Seat looks a seat up by number, case-insensitively.
func (l *Layout) Seat(seatNo string) (domain.Seat, bool) {
	i, ok := l.index[strings.ToUpper(strings.TrimSpace(seatNo))]
	if !ok {
		return domain.Seat{}, false
	}
	return l.Seats[i], true
}

// Layouts is the registry of known aircraft models.
type Layouts struct {
	byModel map[string]*Layout
}

var defaultLayouts = []config.LayoutConfig{
	{Model: "A320", Rows: 30, Columns: "ABCDEF", BusinessRows: 3},
	{Model: "B737", Rows: 32, Columns: "ABCDEF", BusinessRows: 4},
	{Model: "ATR72", Rows: 18, Columns: "ACDF", BusinessRows: 0},
}

// NewLayouts registers the built-in models and then cfgs, which override by model name.
func NewLayouts(cfgs []config.LayoutConfig) (*Layouts, error) {
	reg := &Layouts{byModel: make(map[string]*Layout)}
	for _, c := range append(append([]config.LayoutConfig{}, defaultLayouts...), cfgs...) {
		l, err := NewLayout(c.Model, c.Rows, strings.ToUpper(c.Columns), c.BusinessRows)
		if err != nil {
			return nil, err
		}
		reg.byModel[strings.ToUpper(c.Model)] = l
	}
	return reg, nil
}

func (r *Layouts) ForModel(model string) (*Layout, bool) {
	l, ok := r.byModel[strings.ToUpper(strings.TrimSpace(model))]
	return l, ok
}
