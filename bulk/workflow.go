// Package bulk drives the file based create, update and delete flows of user
// management and checks the counts the portal reports against the files.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/samber/lo"

	"github.com/networkteam/cvsuite/tabular"
)

// UI is what the workflow needs from the user management screen.
// *pages.UserManagement implements it.
type UI interface {
	OpenBulkCreate() error
	OpenBulkUpdate() error
	// OpenBulkDelete opens the delete dialog in "delete listed users" mode.
	OpenBulkDelete() error
	Upload(path string) error
	ValidCountLabel() (string, error)
	ErrorCountLabel() (string, error)
	SubmitLabel() (string, error)
	Submit() error
	ToastMessage() (string, error)
	GenerateDeletePreview() error
	DeleteWarningLabel() (string, error)
	DeleteListLabel() (string, error)
	DownloadDeleteReport(path string) error
	CloseBulkDialog() error
	ConfirmBulkDelete() error
	Search(keyword string) error
	IsNoUserFound() bool
	ResultCountLabel() (string, error)
	ExportAll(path string) error
}

// Op is a bulk upload operation.
type Op string

const (
	OpCreate Op = "Create"
	OpUpdate Op = "Update"
)

const (
	// DefaultReportSheet is the sheet of the delete preview report.
	DefaultReportSheet = "Users to Delete"
	// ReportIDColumn holds the database id in the delete preview report.
	ReportIDColumn = "Database ID"
	// UpdateIDColumn receives the database id in update files.
	UpdateIDColumn = "userId"
	// EmailColumn is the natural key of user files.
	EmailColumn = "email"
)

// Counts are the preview numbers of an uploaded file.
type Counts struct {
	Valid  int
	Errors int
}

// Result collects what the portal showed during a step, also on failure.
type Result struct {
	Rows        int
	Counts      Counts
	SubmitLabel string
	Toast       string
}

// Options configures a Workflow.
type Options struct {
	// Default: slog.Default()
	Logger *slog.Logger
	// ScratchDir receives downloads when no path is given.
	// Default: os.TempDir()
	ScratchDir string
}

// Workflow runs bulk user operations through a UI.
type Workflow struct {
	ui         UI
	logger     *slog.Logger
	scratchDir string
}

func New(ui UI, opts Options) *Workflow {
	w := &Workflow{ui: ui, logger: opts.Logger, scratchDir: opts.ScratchDir}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.scratchDir == "" {
		w.scratchDir = os.TempDir()
	}
	return w
}

// Stage opens the dialog of op, uploads file and reads the preview counts.
func (w *Workflow) Stage(ctx context.Context, op Op, file string) (Counts, error) {
	if err := ctx.Err(); err != nil {
		return Counts{}, err
	}
	open := w.ui.OpenBulkCreate
	if op == OpUpdate {
		open = w.ui.OpenBulkUpdate
	}
	if err := open(); err != nil {
		return Counts{}, fmt.Errorf("opening bulk %s: %w", strings.ToLower(string(op)), err)
	}
	if err := w.ui.Upload(file); err != nil {
		return Counts{}, err
	}
	return w.preview()
}

func (w *Workflow) preview() (Counts, error) {
	valid, err := w.count("valid count", w.ui.ValidCountLabel)
	if err != nil {
		return Counts{}, err
	}
	errs, err := w.count("error count", w.ui.ErrorCountLabel)
	if err != nil {
		return Counts{}, err
	}
	return Counts{Valid: valid, Errors: errs}, nil
}

func (w *Workflow) count(what string, label func() (string, error)) (int, error) {
	text, err := label()
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", what, err)
	}
	return ParseCount(text)
}

// Create uploads a create file and submits it. Every data row must be
// previewed as valid.
func (w *Workflow) Create(ctx context.Context, file string) (Result, error) {
	return w.upload(ctx, OpCreate, file, func(n int) string {
		return fmt.Sprintf("Successfully processed %d users", n)
	})
}

// Update uploads an update file and submits it. The portal does not report a
// count on update, so only the submit label is checked.
func (w *Workflow) Update(ctx context.Context, file string) (Result, error) {
	return w.upload(ctx, OpUpdate, file, nil)
}

func (w *Workflow) upload(ctx context.Context, op Op, file string, wantToast func(n int) string) (Result, error) {
	rows, err := dataRows(file, tabular.Options{})
	if err != nil {
		return Result{}, err
	}
	res := Result{Rows: rows}
	logger := w.logger.With(slog.String("op", string(op)), slog.String("file", file))

	res.Counts, err = w.Stage(ctx, op, file)
	if err != nil {
		return res, err
	}
	logger.Debug("Bulk file staged", slog.Int("valid", res.Counts.Valid), slog.Int("errors", res.Counts.Errors))
	if err := errors.Join(
		expectCount("valid rows", res.Counts.Valid, rows),
		expectCount("error rows", res.Counts.Errors, 0),
	); err != nil {
		return res, err
	}

	res.SubmitLabel, err = w.ui.SubmitLabel()
	if err != nil {
		return res, fmt.Errorf("reading submit label: %w", err)
	}
	want := fmt.Sprintf("%s %d Users", op, rows)
	if !strings.Contains(res.SubmitLabel, want) {
		return res, fmt.Errorf("%w: submit label %q, want %q", ErrCountMismatch, res.SubmitLabel, want)
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := w.ui.Submit(); err != nil {
		return res, fmt.Errorf("submitting bulk %s: %w", strings.ToLower(string(op)), err)
	}
	res.Toast, err = w.ui.ToastMessage()
	if err != nil {
		return res, fmt.Errorf("reading confirmation: %w", err)
	}
	if wantToast != nil && !strings.Contains(res.Toast, wantToast(rows)) {
		return res, fmt.Errorf("%w: confirmation %q, want %q", ErrCountMismatch, res.Toast, wantToast(rows))
	}

	logger.Info("Bulk upload submitted", slog.Int("users", rows))
	return res, nil
}

// DownloadDeleteReport previews the deletion of the users listed in idsFile
// and saves the generated report to reportPath without deleting anything.
// An empty reportPath creates a file in the scratch dir. The path is returned.
func (w *Workflow) DownloadDeleteReport(ctx context.Context, idsFile, reportPath string) (string, error) {
	if reportPath == "" {
		reportPath = w.scratchPath("delete-report", ".xlsx")
	}
	if err := os.MkdirAll(filepath.Dir(reportPath), 0o755); err != nil {
		return "", err
	}
	if err := w.stageDelete(ctx, idsFile); err != nil {
		return "", err
	}
	if err := w.ui.DownloadDeleteReport(reportPath); err != nil {
		return "", err
	}
	if err := w.ui.CloseBulkDialog(); err != nil {
		return "", fmt.Errorf("closing bulk dialog: %w", err)
	}
	w.logger.Debug("Delete report downloaded", slog.String("path", reportPath))
	return reportPath, nil
}

func (w *Workflow) stageDelete(ctx context.Context, idsFile string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.ui.OpenBulkDelete(); err != nil {
		return fmt.Errorf("opening bulk delete: %w", err)
	}
	if err := w.ui.Upload(idsFile); err != nil {
		return err
	}
	if err := w.ui.GenerateDeletePreview(); err != nil {
		return fmt.Errorf("generating delete preview: %w", err)
	}
	return nil
}

// LinkIDs copies the database ids of a delete report into the userId column
// of an update file. Rows are matched by email when both files have an email
// column, otherwise by position. It returns the number of linked rows.
func LinkIDs(reportPath, reportSheet, updatePath string) (int, error) {
	if reportSheet == "" {
		reportSheet = DefaultReportSheet
	}
	report, err := tabular.Open(reportPath, tabular.Options{Sheet: reportSheet})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = report.Close()
	}()
	update, err := tabular.Open(updatePath, tabular.Options{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = update.Close()
	}()

	ids, err := report.Column(ReportIDColumn)
	if err != nil {
		return 0, err
	}

	var linked int
	reportEmails, errR := report.Column(EmailColumn)
	updateIndex, errU := update.Index(EmailColumn)
	if errR == nil && errU == nil {
		rowByEmail := lo.MapKeys(updateIndex, func(_ int, email string) string {
			return strings.ToLower(email)
		})
		for i, email := range reportEmails {
			row, ok := rowByEmail[strings.ToLower(email)]
			if !ok || ids[i] == "" {
				continue
			}
			if err := update.SetCell(UpdateIDColumn, row, ids[i]); err != nil {
				return 0, err
			}
			linked++
		}
	} else {
		for i, id := range ids[:min(len(ids), update.DataRows())] {
			if err := update.SetCell(UpdateIDColumn, i+2, id); err != nil {
				return 0, err
			}
			linked++
		}
	}

	if err := update.Save(); err != nil {
		return 0, err
	}
	return linked, nil
}

// Delete deletes the users listed in idsFile (one id per line, no header) and
// checks that searching each of identifiers finds nothing afterwards.
func (w *Workflow) Delete(ctx context.Context, idsFile string, identifiers []string) (Result, error) {
	k, err := dataRows(idsFile, tabular.Options{NoHeader: true})
	if err != nil {
		return Result{}, err
	}
	res := Result{Rows: k}

	if err := w.stageDelete(ctx, idsFile); err != nil {
		return res, err
	}

	warning, err := w.ui.DeleteWarningLabel()
	if err != nil {
		return res, fmt.Errorf("reading delete warning: %w", err)
	}
	if want := fmt.Sprintf("%d users will be permanently deleted", k); !strings.Contains(warning, want) {
		return res, fmt.Errorf("%w: warning %q, want %q", ErrCountMismatch, warning, want)
	}
	listed, err := w.count("delete list", w.ui.DeleteListLabel)
	if err != nil {
		return res, err
	}
	if err := expectCount("users to be deleted", listed, k); err != nil {
		return res, err
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := w.ui.ConfirmBulkDelete(); err != nil {
		return res, fmt.Errorf("confirming bulk delete: %w", err)
	}
	res.Toast, err = w.ui.ToastMessage()
	if err != nil {
		return res, fmt.Errorf("reading confirmation: %w", err)
	}
	if want := fmt.Sprintf("Successfully deleted %d users.", k); !strings.Contains(res.Toast, want) {
		return res, fmt.Errorf("%w: confirmation %q, want %q", ErrCountMismatch, res.Toast, want)
	}
	w.logger.Info("Bulk delete confirmed", slog.Int("users", k))

	remaining, err := w.Remaining(ctx, identifiers)
	if err != nil {
		return res, err
	}
	if len(remaining) > 0 {
		return res, fmt.Errorf("%w: %s", ErrNotDeleted, strings.Join(remaining, ", "))
	}
	return res, nil
}

// Remaining searches every identifier and returns those still found.
func (w *Workflow) Remaining(ctx context.Context, identifiers []string) ([]string, error) {
	var remaining []string
	for _, id := range lo.Uniq(lo.Compact(identifiers)) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := w.ui.Search(id); err != nil {
			return nil, fmt.Errorf("searching %s: %w", id, err)
		}
		if !w.ui.IsNoUserFound() {
			remaining = append(remaining, id)
		}
	}
	return remaining, nil
}

// ExportResult describes a user export.
type ExportResult struct {
	Path      string
	Displayed int
	Rows      int
}

// Export downloads the export of all listed users into dir and compares its
// data rows with the result count shown before the download.
func (w *Workflow) Export(ctx context.Context, dir string) (ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return ExportResult{}, err
	}
	if dir == "" {
		dir = w.scratchPath("export", "")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ExportResult{}, err
	}

	var res ExportResult
	var err error
	res.Displayed, err = w.count("result count", w.ui.ResultCountLabel)
	if err != nil {
		return res, err
	}

	res.Path = filepath.Join(dir, fmt.Sprintf("users_export_%s.csv", time.Now().Format(time.DateOnly)))
	if err := w.ui.ExportAll(res.Path); err != nil {
		return res, err
	}
	res.Rows, err = dataRows(res.Path, tabular.Options{})
	if err != nil {
		return res, err
	}
	return res, expectCount("exported rows", res.Rows, res.Displayed)
}

// WithUsers creates the users of createFile, runs fn and then deletes the
// users listed in idsFile. The delete runs on every exit of fn, including
// errors, panics and cancellation of ctx. Errors of both are joined.
func (w *Workflow) WithUsers(ctx context.Context, createFile, idsFile string, identifiers []string, fn func(ctx context.Context) error) (err error) {
	defer func() {
		r := recover()
		if _, cleanupErr := w.Delete(context.WithoutCancel(ctx), idsFile, identifiers); cleanupErr != nil {
			w.logger.Warn("Bulk cleanup failed", slog.String("file", idsFile), slog.Any("error", cleanupErr))
			err = errors.Join(err, fmt.Errorf("cleanup: %w", cleanupErr))
		}
		if r != nil {
			panic(r)
		}
	}()

	if _, err := w.Create(ctx, createFile); err != nil {
		return fmt.Errorf("creating users: %w", err)
	}
	return fn(ctx)
}

func (w *Workflow) scratchPath(prefix, ext string) string {
	return filepath.Join(w.scratchDir, prefix+"-"+uuid.Must(uuid.NewV7()).String()+ext)
}

func dataRows(path string, opts tabular.Options) (int, error) {
	t, err := tabular.Open(path, opts)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = t.Close()
	}()
	return t.DataRows(), nil
}
