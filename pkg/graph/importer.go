package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/graphlift/internal/util"
	"github.com/OFFIS-RIT/graphlift/pkg/common"
	"github.com/OFFIS-RIT/graphlift/pkg/loader"
	"github.com/OFFIS-RIT/graphlift/pkg/logger"
	"github.com/OFFIS-RIT/graphlift/pkg/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Display copies are cut to these rune counts before they are written.
const (
	maxRawContent  = 1000
	maxTextUnit    = 1000
	maxFullContent = 5000
)

// Step names in the order Run executes them.
const (
	StepConstraints      = "constraints"
	StepDocuments        = "documents"
	StepEntities         = "entities"
	StepRelationships    = "relationships"
	StepCommunities      = "communities"
	StepCommunityReports = "community_reports"
	StepCommunityLinks   = "community_links"
	StepTextUnits        = "text_units"
	StepMentions         = "mentions"
	StepIndexes          = "indexes"
)

var errMissingID = errors.New("row has no id")

// StepReport counts the rows one import step processed.
type StepReport struct {
	Step      string `json:"step"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Skipped   bool   `json:"skipped,omitempty"`
}

// ImportReport aggregates the steps of one run.
type ImportReport struct {
	RunID    string        `json:"run_id"`
	Steps    []StepReport  `json:"steps"`
	Duration time.Duration `json:"duration"`
}

// Step returns the report of the named step.
func (r ImportReport) Step(name string) (StepReport, bool) {
	for _, s := range r.Steps {
		if s.Step == name {
			return s, true
		}
	}
	return StepReport{}, false
}

// ImportOptions controls a full import run.
type ImportOptions struct {
	// Reset wipes the graph first. Callers confirm with the user.
	Reset bool
	// TextUnits imports text units and their MENTIONS edges.
	TextUnits bool
}

// Importer writes GraphRAG tables into a graph store. Row level failures
// are logged and counted; only an unreachable store or a cancelled context
// stops a run.
type Importer struct {
	storage store.ImportStorage
}

func NewImporter(storage store.ImportStorage) *Importer {
	return &Importer{storage: storage}
}

// Run imports every table from reader in dependency order. Missing tables
// are skipped with a warning.
func (i *Importer) Run(ctx context.Context, reader loader.TableReader, opts ImportOptions) (ImportReport, error) {
	start := time.Now()
	runID, err := gonanoid.New()
	if err != nil {
		return ImportReport{}, fmt.Errorf("failed to create run id: %w", err)
	}
	report := ImportReport{RunID: runID}
	logger.Info("[Import] Starting", "run_id", runID, "reset", opts.Reset, "text_units", opts.TextUnits)

	if opts.Reset {
		logger.Warn("[Import] Clearing graph", "run_id", runID)
		if err := i.storage.Reset(ctx); err != nil {
			return report, fmt.Errorf("failed to reset graph: %w", err)
		}
	}

	if err := i.storage.EnsureConstraints(ctx); err != nil {
		return report, fmt.Errorf("failed to create constraints: %w", err)
	}
	report.Steps = append(report.Steps, StepReport{Step: StepConstraints})

	tables := map[loader.Kind][]loader.Record{}
	read := func(kind loader.Kind) ([]loader.Record, bool, error) {
		rows, err := reader.Read(ctx, kind)
		if errors.Is(err, loader.ErrTableNotFound) {
			logger.Warn("[Import] Table not found, skipping", "run_id", runID, "table", kind)
			return nil, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to read %s: %w", kind, err)
		}
		logger.Debug("[Import] Loaded table", "run_id", runID, "table", kind, "rows", len(rows))
		tables[kind] = rows
		return rows, true, nil
	}

	steps := []struct {
		kind loader.Kind
		step string
	}{
		{loader.KindDocuments, StepDocuments},
		{loader.KindEntities, StepEntities},
		{loader.KindRelationships, StepRelationships},
		{loader.KindCommunities, StepCommunities},
		{loader.KindCommunityReports, StepCommunityReports},
	}
	for _, s := range steps {
		rows, ok, err := read(s.kind)
		if err != nil {
			return report, err
		}
		if !ok {
			report.Steps = append(report.Steps, StepReport{Step: s.step, Skipped: true})
			continue
		}
		sr, err := i.Import(ctx, s.kind, rows)
		report.Steps = append(report.Steps, sr)
		if err != nil {
			return report, err
		}
		logStep(runID, sr)
	}

	sr, err := i.LinkCommunities(ctx, tables[loader.KindEntities], tables[loader.KindCommunities])
	report.Steps = append(report.Steps, sr)
	if err != nil {
		return report, err
	}
	logStep(runID, sr)

	if opts.TextUnits {
		rows, ok, err := read(loader.KindTextUnits)
		if err != nil {
			return report, err
		}
		if ok {
			sr, err := i.Import(ctx, loader.KindTextUnits, rows)
			report.Steps = append(report.Steps, sr)
			if err != nil {
				return report, err
			}
			logStep(runID, sr)

			sr, err = i.LinkMentions(ctx, rows)
			report.Steps = append(report.Steps, sr)
			if err != nil {
				return report, err
			}
			logStep(runID, sr)
		} else {
			report.Steps = append(report.Steps,
				StepReport{Step: StepTextUnits, Skipped: true},
				StepReport{Step: StepMentions, Skipped: true},
			)
		}
	}

	if err := i.storage.EnsureIndexes(ctx); err != nil {
		return report, fmt.Errorf("failed to create indexes: %w", err)
	}
	report.Steps = append(report.Steps, StepReport{Step: StepIndexes})

	report.Duration = time.Since(start)
	logger.Info("[Import] Completed", "run_id", runID, "duration", report.Duration)
	return report, nil
}

func logStep(runID string, sr StepReport) {
	logger.Info("[Import] Step finished",
		"run_id", runID,
		"step", sr.Step,
		"succeeded", sr.Succeeded,
		"total", sr.Total,
		"failed", sr.Failed,
	)
}

// Import upserts the rows of one table.
func (i *Importer) Import(ctx context.Context, kind loader.Kind, rows []loader.Record) (StepReport, error) {
	switch kind {
	case loader.KindDocuments:
		return i.each(ctx, StepDocuments, rows, i.importDocument)
	case loader.KindEntities:
		return i.each(ctx, StepEntities, rows, i.importEntity)
	case loader.KindRelationships:
		seen := make(map[string]struct{}, len(rows))
		return i.each(ctx, StepRelationships, rows, func(ctx context.Context, row loader.Record) (bool, error) {
			return i.importRelationship(ctx, row, seen)
		})
	case loader.KindCommunities:
		return i.each(ctx, StepCommunities, rows, i.importCommunity)
	case loader.KindCommunityReports:
		return i.each(ctx, StepCommunityReports, rows, i.importCommunityReport)
	case loader.KindTextUnits:
		return i.each(ctx, StepTextUnits, rows, i.importTextUnit)
	default:
		return StepReport{}, fmt.Errorf("unknown table %q", kind)
	}
}

type rowFunc func(ctx context.Context, row loader.Record) (bool, error)

func (i *Importer) each(ctx context.Context, step string, rows []loader.Record, fn rowFunc) (StepReport, error) {
	sr := StepReport{Step: step, Total: len(rows)}
	for n, row := range rows {
		if err := ctx.Err(); err != nil {
			return sr, err
		}
		ok, err := fn(ctx, row)
		if err != nil {
			if isFatal(err) {
				return sr, fmt.Errorf("%s aborted at row %d: %w", step, n, err)
			}
			logger.Warn("[Import] Row failed", "step", step, "row", n, "id", row.String("id", ""), "err", err)
			sr.Failed++
			continue
		}
		if !ok {
			logger.Debug("[Import] Row matched nothing", "step", step, "row", n, "id", row.String("id", ""))
			sr.Failed++
			continue
		}
		sr.Succeeded++
	}
	return sr, nil
}

// isFatal reports errors that make further rows pointless.
func isFatal(err error) bool {
	return errors.Is(err, store.ErrUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func requireID(row loader.Record) (string, error) {
	id := row.String("id", "")
	if id == "" {
		return "", errMissingID
	}
	return id, nil
}

func (i *Importer) importDocument(ctx context.Context, row loader.Record) (bool, error) {
	id, err := requireID(row)
	if err != nil {
		return false, err
	}
	doc := common.Document{
		ID:         id,
		Title:      row.String("title", id),
		RawContent: util.Truncate(util.SanitizeText(row.String("raw_content", "")), maxRawContent),
	}
	return true, i.storage.UpsertDocument(ctx, doc)
}

func (i *Importer) importEntity(ctx context.Context, row loader.Record) (bool, error) {
	id, err := requireID(row)
	if err != nil {
		return false, err
	}
	entity := common.Entity{
		ID:              id,
		Name:            row.StringOr("", "name", "title"),
		Type:            row.String("type", ""),
		Description:     util.SanitizeText(row.String("description", "")),
		Degree:          row.Int("degree", 0),
		HumanReadableID: row.Int("human_readable_id", 0),
	}
	return true, i.storage.UpsertEntity(ctx, entity)
}

func (i *Importer) importRelationship(ctx context.Context, row loader.Record, seen map[string]struct{}) (bool, error) {
	id, err := requireID(row)
	if err != nil {
		return false, err
	}
	rel := common.Relationship{
		ID:              id,
		Source:          row.String("source", ""),
		Target:          row.String("target", ""),
		Description:     util.SanitizeText(row.String("description", "")),
		Weight:          row.Float("weight", 1.0),
		HumanReadableID: row.Int("human_readable_id", 0),
	}
	if rel.Source == "" || rel.Target == "" {
		return false, fmt.Errorf("relationship %s has no source or target", id)
	}
	if _, dup := seen[id]; dup {
		logger.Warn("[Import] Duplicate relationship id, last row wins", "id", id)
	}
	seen[id] = struct{}{}
	return i.storage.UpsertRelationship(ctx, rel)
}

func (i *Importer) importCommunity(ctx context.Context, row loader.Record) (bool, error) {
	id, err := requireID(row)
	if err != nil {
		return false, err
	}
	community := common.Community{
		ID:     id,
		Title:  row.String("title", ""),
		Level:  row.Int("level", 0),
		Period: row.String("period", ""),
	}
	return true, i.storage.UpsertCommunity(ctx, community)
}

func (i *Importer) importCommunityReport(ctx context.Context, row loader.Record) (bool, error) {
	communityID := row.StringOr("", "community", "id")
	if communityID == "" {
		return false, errMissingID
	}
	report := common.CommunityReport{
		CommunityID:     communityID,
		Summary:         util.SanitizeText(row.String("summary", "")),
		FullContent:     util.Truncate(util.SanitizeText(row.String("full_content", "")), maxFullContent),
		Rank:            row.Float("rank", 0),
		RankExplanation: row.String("rank_explanation", ""),
		Findings:        findings(row),
	}
	return i.storage.ApplyCommunityReport(ctx, report)
}

// findings keeps string columns as they are and stores structured values as
// JSON.
func findings(row loader.Record) string {
	v, ok := row.Value("findings")
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return row.String("findings", "")
	}
	return string(data)
}

func (i *Importer) importTextUnit(ctx context.Context, row loader.Record) (bool, error) {
	id, err := requireID(row)
	if err != nil {
		return false, err
	}
	unit := common.TextUnit{
		ID:      id,
		Text:    util.Truncate(util.SanitizeText(row.String("text", "")), maxTextUnit),
		NTokens: row.Int("n_tokens", 0),
	}
	return true, i.storage.UpsertTextUnit(ctx, unit)
}

type link struct {
	from, to string
}

// LinkCommunities creates BELONGS_TO edges from entities.community_ids and,
// when present, communities.entity_ids. A row with a malformed list is
// counted once as failed and contributes no links.
func (i *Importer) LinkCommunities(ctx context.Context, entities, communities []loader.Record) (StepReport, error) {
	var links []link
	malformed := 0

	for _, row := range entities {
		ids, err := row.IDList("community_ids")
		if err != nil {
			logger.Warn("[Import] Skipping community links of entity", "id", row.String("id", ""), "err", err)
			malformed++
			continue
		}
		for _, cid := range ids {
			links = append(links, link{from: row.String("id", ""), to: cid})
		}
	}
	for _, row := range communities {
		ids, err := row.IDList("entity_ids")
		if err != nil {
			logger.Warn("[Import] Skipping entity links of community", "id", row.String("id", ""), "err", err)
			malformed++
			continue
		}
		for _, eid := range ids {
			links = append(links, link{from: eid, to: row.String("id", "")})
		}
	}

	sr, err := i.eachLink(ctx, StepCommunityLinks, links, i.storage.LinkEntityToCommunity)
	sr.Total += malformed
	sr.Failed += malformed
	return sr, err
}

// LinkMentions creates MENTIONS edges from text_units.entity_ids.
func (i *Importer) LinkMentions(ctx context.Context, units []loader.Record) (StepReport, error) {
	var links []link
	malformed := 0
	for _, row := range units {
		ids, err := row.IDList("entity_ids")
		if err != nil {
			logger.Warn("[Import] Skipping mentions of text unit", "id", row.String("id", ""), "err", err)
			malformed++
			continue
		}
		for _, eid := range ids {
			links = append(links, link{from: row.String("id", ""), to: eid})
		}
	}

	sr, err := i.eachLink(ctx, StepMentions, links, i.storage.LinkTextUnitToEntity)
	sr.Total += malformed
	sr.Failed += malformed
	return sr, err
}

func (i *Importer) eachLink(
	ctx context.Context,
	step string,
	links []link,
	fn func(ctx context.Context, from, to string) (bool, error),
) (StepReport, error) {
	sr := StepReport{Step: step, Total: len(links)}
	for _, l := range links {
		if err := ctx.Err(); err != nil {
			return sr, err
		}
		if l.from == "" || l.to == "" {
			sr.Failed++
			continue
		}
		ok, err := fn(ctx, l.from, l.to)
		if err != nil {
			if isFatal(err) {
				return sr, fmt.Errorf("%s aborted: %w", step, err)
			}
			logger.Warn("[Import] Link failed", "step", step, "from", l.from, "to", l.to, "err", err)
			sr.Failed++
			continue
		}
		if !ok {
			sr.Failed++
			continue
		}
		sr.Succeeded++
	}
	return sr, nil
}
