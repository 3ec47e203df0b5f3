package sessions

import (
	"log/slog"

	"github.com/lysyi3m/ims-sessions/app/ims"
	"golang.org/x/text/unicode/norm"
)

type Extractor struct {
	schema *Schema
	dates  *DateNormalizer
	links  *LinkBuilder
}

func NewExtractor(schema *Schema, dates *DateNormalizer, links *LinkBuilder) *Extractor {
	return &Extractor{
		schema: schema,
		dates:  dates,
		links:  links,
	}
}

// Run returns the records of every session node matching ref, in document
// order. Nodes without a parseable start date are skipped.
func (e *Extractor) Run(doc *ims.Document, ref string) []Record {
	var records []Record
	skipped := 0

	doc.Walk(func(n *ims.Node) {
		if !e.schema.IsSessionNode(n.Name) {
			return
		}
		if e.schema.Reference.Resolve(n) != ref {
			return
		}

		record, ok := e.normalizeNode(n, ref)
		if !ok {
			skipped++
			return
		}
		records = append(records, record)
	})

	if skipped > 0 {
		slog.Debug("Skipped session nodes without a usable start date", "ref", ref, "skipped", skipped)
	}

	return records
}

func (e *Extractor) normalizeNode(n *ims.Node, ref string) (Record, bool) {
	start, ok := e.dates.Parse(e.schema.Start.Resolve(n))
	if !ok {
		return Record{}, false
	}

	actionID := e.schema.ActionID.Resolve(n)
	record := Record{
		ActionID: actionID,
		Start:    start,
		Location: norm.NFC.String(e.schema.Location.Resolve(n)),
		Status:   norm.NFC.String(e.schema.Status.Resolve(n)),
		Links:    e.links.Build(ref, actionID),
	}

	if end, ok := e.dates.Parse(e.schema.End.Resolve(n)); ok {
		record.End = &end
	}

	return record, true
}
