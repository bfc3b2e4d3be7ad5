package parse

import "strings"

// lookahead is how many lines after a row's name may complete that row.
const lookahead = 10

// Options tunes table handling.
type Options struct {
	// StopOnBareTaxLines also ends a table at CGST/SGST/IGST rows that are
	// not colon-terminated.
	StopOnBareTaxLines bool
}

func (o Options) isStop(line string) bool {
	if IsStopMarker(line) {
		return true
	}
	return o.StopOnBareTaxLines && isBareTaxLine(line)
}

// Segment is the half-open line range [Start, End) of a table region.
type Segment struct {
	Start int
	End   int
}

// Len returns the number of lines in the segment.
func (s Segment) Len() int { return s.End - s.Start }

// SegmentTable locates the line-item table with the default options.
func SegmentTable(lines []TextLine) (Segment, bool) {
	return Options{}.SegmentTable(lines)
}

// SegmentTable locates the line-item table. The last header-like line anchors
// the start, since summary lines earlier in a document can repeat header words;
// the first stop marker after it ends the region.
func (o Options) SegmentTable(lines []TextLine) (Segment, bool) {
	start := -1
	for i, l := range lines {
		if IsHeaderWord(l.Content) {
			start = i + 1
		}
	}
	if start == -1 {
		for i, l := range lines {
			lower := strings.ToLower(l.Content)
			if strings.Contains(lower, "description") || strings.Contains(lower, "amount (rs") {
				start = i + 1
				break
			}
		}
	}
	if start == -1 {
		return Segment{}, false
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		if o.isStop(lines[i].Content) {
			end = i
			break
		}
	}
	return Segment{Start: start, End: end}, true
}

// rowState is the row under construction.
type rowState struct {
	name      string
	hsn       *string
	quantity  *string
	unit      *string
	unitPrice *string
	total     *string
}

// assign puts line into the first open slot it fits, in priority order
// code, quantity, unit, percentage, unit price, total. Quantity is only taken
// once a code has been seen: the code precedes the quantity in these tables.
func (r *rowState) assign(line string) {
	switch {
	case IsCode(line) && r.hsn == nil:
		r.hsn = strPtr(line)
	case IsQuantity(line) && r.quantity == nil && r.hsn != nil:
		r.quantity = strPtr(line)
	case IsUnitWord(line) && r.unit == nil:
		r.unit = strPtr(line)
	case IsPercentage(line):
		// GST rate column, not stored
	case IsAmount(line) && r.unitPrice == nil:
		r.unitPrice = strPtr(CleanAmount(line))
	case IsAmount(line) && r.total == nil:
		r.total = strPtr(CleanAmount(line))
	}
}

func (r *rowState) row() (TableRow, bool) {
	if r.unitPrice == nil || *r.unitPrice == "" {
		return TableRow{}, false
	}
	row := TableRow{
		Name:      r.name,
		Quantity:  "1",
		Unit:      r.unit,
		UnitPrice: *r.unitPrice,
		Total:     *r.unitPrice,
	}
	if r.hsn != nil {
		row.HSN = *r.hsn
	}
	if r.quantity != nil {
		row.Quantity = *r.quantity
	}
	if r.total != nil && *r.total != "" {
		row.Total = *r.total
	}
	return row, true
}

// ReconstructRows groups table lines into rows with the default options.
func ReconstructRows(lines []TextLine) []TableRow {
	return Options{}.ReconstructRows(lines)
}

// ReconstructRows walks the table region once. A name line opens a row; the
// following lines (at most lookahead of them) fill its slots until a stop
// marker or the next name. Rows without a unit price are dropped and the scan
// resumes on the line after the discarded name.
func (o Options) ReconstructRows(lines []TextLine) []TableRow {
	rows := make([]TableRow, 0)
	i := 0
	for i < len(lines) {
		line := lines[i].Content
		if o.isStop(line) {
			break
		}
		if IsRowOrdinal(line) || !IsName(line) {
			i++
			continue
		}

		state := rowState{name: line}
		j := i + 1
		for j < len(lines) && j-i <= lookahead {
			next := lines[j].Content
			if o.isStop(next) {
				break
			}
			if IsName(next) && !IsCode(next) && !IsAmount(next) {
				break
			}
			state.assign(next)
			j++
		}

		if row, ok := state.row(); ok {
			rows = append(rows, row)
			i = j
			continue
		}
		i++
	}
	return rows
}

// ParseTable parses the line-item table of text with the default options.
func ParseTable(text string) []TableRow {
	return Options{}.ParseTable(text)
}

// ParseTable segments text and reconstructs its rows. Text without a table
// yields an empty, non-nil slice.
func (o Options) ParseTable(text string) []TableRow {
	lines := SplitLines(text)
	seg, ok := o.SegmentTable(lines)
	if !ok {
		return make([]TableRow, 0)
	}
	return o.ReconstructRows(lines[seg.Start:seg.End])
}
