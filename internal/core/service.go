package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Tracker is the test-case backend the service talks to.
type Tracker interface {
	ListCases(ctx context.Context, parentID string) (CaseList, error)
	GetCase(ctx context.Context, key string) (TestCase, error)
	CreateCase(ctx context.Context, req SaveRequest) (MutationResult, error)
	UpdateCase(ctx context.Context, key string, req SaveRequest) (MutationResult, error)
	DeleteCase(ctx context.Context, key string) (MutationResult, error)
	ExportCases(ctx context.Context, req ExportRequest) (ExportResult, error)
	ExportSpreadsheet(ctx context.Context, parentID string) (Download, error)

	UploadEvidence(ctx context.Context, name string, r io.Reader) (EvidenceUploadResult, error)
	EvidenceStatus(ctx context.Context) (EvidenceStats, error)
	ListEvidence(ctx context.Context) ([]Evidence, error)
	SendEvidence(ctx context.Context, keys []string) (EvidenceSendResult, error)
	ClearEvidence(ctx context.Context) (MutationResult, error)
}

// Download is a streamed file from the tracker. The caller must close Body.
type Download struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
}

// Service provides the core business logic for test-case management.
type Service struct {
	tracker Tracker
	guard   *EvidenceGuard
}

// NewService creates a Service backed by tracker.
func NewService(tracker Tracker, guard *EvidenceGuard) *Service {
	if guard == nil {
		guard = NewEvidenceGuard()
	}
	return &Service{tracker: tracker, guard: guard}
}

// Guard returns the evidence guard, for shutdown draining.
func (s *Service) Guard() *EvidenceGuard {
	return s.guard
}

// normalizeKey trims an issue key and checks its shape.
func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if !ValidIssueKey(key) {
		return "", fmt.Errorf("issue key %q: %w", key, ErrInvalidIssueKey)
	}
	return key, nil
}

// LoadParent fetches the cases under parentID and selects it in ws.
// The selection is kept only when the tracker knows the parent.
func (s *Service) LoadParent(ctx context.Context, ws *Workspace, parentID string) (CaseList, error) {
	key, err := normalizeKey(parentID)
	if err != nil {
		return CaseList{}, err
	}

	list, err := s.tracker.ListCases(ctx, key)
	if err != nil {
		return CaseList{}, fmt.Errorf("load parent %s: %w", key, err)
	}
	if list.IssuePai == "" {
		list.IssuePai = key
	}
	if list.TotalCasos == 0 {
		list.TotalCasos = len(list.CasosTeste)
	}

	ws.SetParent(key)
	return list, nil
}

// GetCase fetches a single case.
func (s *Service) GetCase(ctx context.Context, key string) (TestCase, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return TestCase{}, err
	}
	tc, err := s.tracker.GetCase(ctx, key)
	if err != nil {
		return TestCase{}, fmt.Errorf("get case %s: %w", key, err)
	}
	return tc, nil
}

// EditCase fetches key for the edit form and marks it as the edit target.
// The status is mapped from the tracker's workflow name.
func (s *Service) EditCase(ctx context.Context, ws *Workspace, key string) (TestCase, error) {
	tc, err := s.GetCase(ctx, key)
	if err != nil {
		return TestCase{}, err
	}
	tc.Status = FormStatus(string(tc.Status))
	ws.BeginEdit(tc.ID)
	return tc, nil
}

// CreateCase validates rec and creates it under the workspace's parent.
func (s *Service) CreateCase(ctx context.Context, ws *Workspace, rec TestCaseRecord) (MutationResult, error) {
	parent := ws.ParentID()
	if parent == "" {
		return MutationResult{}, ErrNoParent
	}

	rec = NormalizeRecord(rec)
	if err := ValidateForSave(rec); err != nil {
		return MutationResult{}, err
	}

	res, err := s.tracker.CreateCase(ctx, SaveRequest{IssuePai: parent, TestCaseRecord: rec})
	if err != nil {
		return MutationResult{}, fmt.Errorf("create case under %s: %w", parent, err)
	}

	slog.Info("test case created", "parent", parent, "id", res.ID, "titulo", rec.Titulo)
	return res, nil
}

// UpdateCase validates rec and replaces case key with it.
// The edit target is cleared on success.
func (s *Service) UpdateCase(ctx context.Context, ws *Workspace, key string, rec TestCaseRecord) (MutationResult, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return MutationResult{}, err
	}

	rec = NormalizeRecord(rec)
	if err := ValidateForSave(rec); err != nil {
		return MutationResult{}, err
	}

	res, err := s.tracker.UpdateCase(ctx, key, SaveRequest{IssuePai: ws.ParentID(), TestCaseRecord: rec})
	if err != nil {
		return MutationResult{}, fmt.Errorf("update case %s: %w", key, err)
	}

	ws.EndEdit()
	return res, nil
}

// Editable field names accepted by UpdateField.
const (
	FieldTitulo       = "titulo"
	FieldStatus       = "status"
	FieldTipoExecucao = "tipo_execucao"
	FieldTipoTeste    = "tipo_teste"
	FieldComponentes  = "componentes"
	FieldObjetivo     = "objetivo"
	FieldPreCondicoes = "pre_condicoes"
	FieldDescricao    = "descricao"
)

// UpdateField changes a single field of case key, keeping every other field
// as the tracker currently has it.
func (s *Service) UpdateField(ctx context.Context, ws *Workspace, key, field, value string) (MutationResult, error) {
	tc, err := s.GetCase(ctx, key)
	if err != nil {
		return MutationResult{}, err
	}

	rec := tc.TestCaseRecord
	// the tracker returns its workflow name; keep the case in the same state
	if !isStatus(rec.Status) {
		rec.Status = FormStatus(string(rec.Status))
	}
	value = strings.TrimSpace(value)
	switch field {
	case FieldTitulo:
		rec.Titulo = value
	case FieldStatus:
		rec.Status = Status(value)
	case FieldTipoExecucao:
		rec.TipoExecucao = ExecutionType(value)
	case FieldTipoTeste:
		rec.TipoTeste = TestType(value)
	case FieldComponentes:
		rec.Componentes = SplitComponents(value)
	case FieldObjetivo:
		rec.Objetivo = value
	case FieldPreCondicoes:
		rec.PreCondicoes = value
	case FieldDescricao:
		rec.Descricao = value
	default:
		return MutationResult{}, ValidationErrors{{Field: field, Message: "is not an editable field"}}
	}

	return s.UpdateCase(ctx, ws, tc.ID, rec)
}

// SplitComponents parses a comma-separated component list.
func SplitComponents(s string) Components {
	out := Components{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DeleteCase removes case key and clears the edit target.
func (s *Service) DeleteCase(ctx context.Context, ws *Workspace, key string) (MutationResult, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return MutationResult{}, err
	}

	res, err := s.tracker.DeleteCase(ctx, key)
	if err != nil {
		return MutationResult{}, fmt.Errorf("delete case %s: %w", key, err)
	}

	ws.EndEdit()
	slog.Info("test case deleted", "id", key)
	return res, nil
}

// PreviewImport parses pasted text and stages the result in ws.
// ErrNoInput and ErrNoValidRows are returned as warnings; the staged
// buffer is cleared in that case.
func (s *Service) PreviewImport(ws *Workspace, text string) (PasteResult, error) {
	res, err := ParsePasted(text)
	if err != nil {
		ws.ClearImport()
		return res, err
	}
	ws.StageImport(res)
	return res, nil
}

// FillGrid hands the staged records to the grid and clears the buffer.
func (s *Service) FillGrid(ws *Workspace) ([]TestCaseRecord, error) {
	return ws.TakeImport()
}

// ClearImport drops any staged records.
func (s *Service) ClearImport(ws *Workspace) {
	ws.ClearImport()
}

// ExportGrid creates the grid rows under parentID in one batch.
// Rows with an empty title are skipped and the rest are normalized; the
// tracker reports per-row failures in the result.
func (s *Service) ExportGrid(ctx context.Context, parentID string, records []TestCaseRecord) (ExportResult, error) {
	if strings.TrimSpace(parentID) == "" {
		return ExportResult{}, ErrNoParent
	}
	parent, err := normalizeKey(parentID)
	if err != nil {
		return ExportResult{}, err
	}

	casos := make([]TestCaseRecord, 0, len(records))
	for _, rec := range records {
		rec = NormalizeRecord(rec)
		if rec.Titulo == "" {
			continue
		}
		casos = append(casos, rec)
	}
	if len(casos) == 0 {
		return ExportResult{}, ErrNoValidRows
	}

	res, err := s.tracker.ExportCases(ctx, ExportRequest{IssuePai: parent, Casos: casos})
	if err != nil {
		return ExportResult{}, fmt.Errorf("export %d cases to %s: %w", len(casos), parent, err)
	}

	slog.Info("grid exported",
		"parent", parent,
		"total", res.Total,
		"sucessos", res.Sucessos,
		"erros", res.Erros,
	)
	return res, nil
}

// ExportSpreadsheet streams the spreadsheet of all cases under parentID.
func (s *Service) ExportSpreadsheet(ctx context.Context, parentID string) (Download, error) {
	key, err := normalizeKey(parentID)
	if err != nil {
		return Download{}, err
	}
	dl, err := s.tracker.ExportSpreadsheet(ctx, key)
	if err != nil {
		return Download{}, fmt.Errorf("export spreadsheet %s: %w", key, err)
	}
	if dl.Filename == "" {
		dl.Filename = fmt.Sprintf("casos_teste_%s.xlsx", key)
	}
	return dl, nil
}

// UploadEvidence forwards an HTML test-run log for screenshot extraction.
// Only one log is processed at a time.
func (s *Service) UploadEvidence(ctx context.Context, name string, r io.Reader) (EvidenceUploadResult, error) {
	if strings.TrimSpace(name) == "" || r == nil {
		return EvidenceUploadResult{}, ErrNoEvidenceFile
	}
	if !IsEvidenceFile(name) {
		return EvidenceUploadResult{}, fmt.Errorf("%s: %w", name, ErrInvalidEvidenceFile)
	}

	if err := s.guard.TryAcquire(name); err != nil {
		return EvidenceUploadResult{}, err
	}
	defer s.guard.Release()

	res, err := s.tracker.UploadEvidence(ctx, name, r)
	if err != nil {
		return EvidenceUploadResult{}, fmt.Errorf("upload evidence %s: %w", name, err)
	}

	slog.Info("evidence processed",
		"file", name,
		"sucessos", res.Estatisticas.Sucessos,
		"falhas", res.Estatisticas.Falhas,
	)
	return res, nil
}

// EvidenceStatus returns the counters of the last processed log.
func (s *Service) EvidenceStatus(ctx context.Context) (EvidenceStats, error) {
	stats, err := s.tracker.EvidenceStatus(ctx)
	if err != nil {
		return EvidenceStats{}, fmt.Errorf("evidence status: %w", err)
	}
	return stats, nil
}

// EvidenceList returns the extracted evidence files.
func (s *Service) EvidenceList(ctx context.Context) ([]Evidence, error) {
	list, err := s.tracker.ListEvidence(ctx)
	if err != nil {
		return nil, fmt.Errorf("evidence list: %w", err)
	}
	return list, nil
}

// SendEvidence attaches the extracted evidence to the given issues.
// Keys are trimmed and deduplicated; any invalid key rejects the request.
func (s *Service) SendEvidence(ctx context.Context, keys []string) (EvidenceSendResult, error) {
	seen := make(map[string]struct{}, len(keys))
	clean := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			continue
		}
		key, err := normalizeKey(k)
		if err != nil {
			return EvidenceSendResult{}, err
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, key)
	}
	if len(clean) == 0 {
		return EvidenceSendResult{}, fmt.Errorf("no issue keys: %w", ErrInvalidIssueKey)
	}

	res, err := s.tracker.SendEvidence(ctx, clean)
	if err != nil {
		return EvidenceSendResult{}, fmt.Errorf("send evidence: %w", err)
	}
	return res, nil
}

// ClearEvidence removes the extracted evidence on the tracker side.
func (s *Service) ClearEvidence(ctx context.Context) (MutationResult, error) {
	if s.guard.Active() {
		return MutationResult{}, ErrEvidenceInProgress
	}
	res, err := s.tracker.ClearEvidence(ctx)
	if err != nil {
		return MutationResult{}, fmt.Errorf("clear evidence: %w", err)
	}
	return res, nil
}
