package domain

// Page is an offset pagination request. Limit above bulkExportThreshold is
// treated as a bulk export and capped at bulkExportMax.
type Page struct {
	Number int
	Limit  int
}

const (
	bulkExportThreshold = 1000
	bulkExportMax       = 50000
)

func (p Page) normalized(allowBulk bool) Page {
	if p.Number < 1 {
		p.Number = 1
	}

	switch {
	case p.Limit < 1:
		p.Limit = 10
	case p.Limit > bulkExportThreshold:
		if !allowBulk {
			p.Limit = bulkExportThreshold
		} else if p.Limit > bulkExportMax {
			p.Limit = bulkExportMax
		}
	}

	return p
}

// Normalize clamps the page to sane defaults.
func (p Page) Normalize() Page {
	return p.normalized(false)
}

// NormalizeBulk clamps the page but allows bulk-export limits.
func (p Page) NormalizeBulk() Page {
	return p.normalized(true)
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Pages computes the page count for a total, ceil(total/limit).
func (p Page) Pages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
