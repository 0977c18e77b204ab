package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jmorel/etude-backend/internal/model"
	"github.com/jmorel/etude-backend/internal/queue"
	"github.com/jmorel/etude-backend/internal/repository"
	"github.com/jmorel/etude-backend/internal/storage"
)

// StudyCaseStore is the slice of the study-case repository the handler
// needs.
type StudyCaseStore interface {
	Create(ctx context.Context, sc model.StudyCase) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.StudyCase, error)
	List(ctx context.Context) ([]model.StudyCase, error)
	Update(ctx context.Context, id uint64, p repository.StudyCasePatch) (model.StudyCase, error)
	UpdateZipFile(ctx context.Context, id uint64, zipFile string) error
	Delete(ctx context.Context, id uint64) error
}

// FileStore is the slice of the archive store the handler needs;
// *storage.Store satisfies it.
type FileStore interface {
	SaveArchive(name, clientFilename string, src io.Reader) (string, error)
	RenameDir(oldName, newName, oldZipFile string) (string, error)
	DeleteFile(rel string) error
	RemoveDir(name string) error
}

// StudyCaseHandler serves study-case CRUD plus the archive upload and the
// rename-aware metadata update.
type StudyCaseHandler struct {
	Cases StudyCaseStore
	Files FileStore
}

func NewStudyCaseHandler(cases StudyCaseStore, files FileStore) *StudyCaseHandler {
	return &StudyCaseHandler{Cases: cases, Files: files}
}

// ----- field validation -----

const (
	dateLayout   = "2006-01-02"
	timingLayout = "15:04:05"
)

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func validTiming(s string) bool {
	_, err := time.Parse(timingLayout, s)
	return err == nil
}

// dateOrdered reports date_fin >= date_debut; both must already be valid.
func dateOrdered(debut, fin string) bool {
	d, _ := time.Parse(dateLayout, debut)
	f, _ := time.Parse(dateLayout, fin)
	return !f.Before(d)
}

// List returns all study cases. GET /study-cases
func (h *StudyCaseHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	cases, err := h.Cases.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, cases)
}

// Get returns one study case. GET /study-cases/:id
func (h *StudyCaseHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sc, err := h.Cases.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "study case not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, sc)
}

// Create validates the multipart form, stores the archive, then inserts
// the metadata row. When the insert fails the stored file is removed
// again so the two stores cannot drift apart on this path.
// POST /study-cases
func (h *StudyCaseHandler) Create(c echo.Context) error {
	sc, fieldErrs := bindStudyCaseForm(c)
	fh, err := c.FormFile("zipFile")
	if err != nil {
		fieldErrs["zipFile"] = "archive file is required"
	} else if err := storage.CheckArchive(fh.Filename, fh.Size); err != nil {
		fieldErrs["zipFile"] = err.Error()
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fieldErrs})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read upload"})
	}
	defer src.Close()

	rel, err := h.Files.SaveArchive(sc.NomEtude, fh.Filename, src)
	if err != nil {
		return storeErrJSON(c, err)
	}
	sc.ZipFile = rel

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Cases.Create(ctx, sc)
	if err != nil {
		// Compensating action: the file write already happened, so take
		// it back out rather than leaving an orphaned archive behind.
		if delErr := h.Files.DeleteFile(rel); delErr != nil {
			log.Printf("study case create: compensating delete of %s failed: %v", rel, delErr)
		}
		log.Printf("study case create: insert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store study case"})
	}

	created, err := h.Cases.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	h.publish(c, queue.StudyCaseEvent{
		Action: queue.ActionCreated, StudyCaseID: id,
		NomEtude: created.NomEtude, ZipFile: created.ZipFile,
	})
	return c.JSON(http.StatusCreated, created)
}

// bindStudyCaseForm reads and validates the multipart metadata fields of a
// create request. All fields are required here.
func bindStudyCaseForm(c echo.Context) (model.StudyCase, map[string]string) {
	fieldErrs := map[string]string{}
	sc := model.StudyCase{
		NomEtude:      strings.TrimSpace(c.FormValue("nom_etude")),
		DateDebut:     c.FormValue("date_debut"),
		DateFin:       c.FormValue("date_fin"),
		TimingAttendu: c.FormValue("timing_attendu"),
		TimingReelle:  c.FormValue("timing_reelle"),
	}
	if err := storage.ValidateName(sc.NomEtude); err != nil {
		fieldErrs["nom_etude"] = "required, at most 255 characters, no path separators"
	}
	if !validDate(sc.DateDebut) {
		fieldErrs["date_debut"] = "must be a date (YYYY-MM-DD)"
	}
	if !validDate(sc.DateFin) {
		fieldErrs["date_fin"] = "must be a date (YYYY-MM-DD)"
	} else if validDate(sc.DateDebut) && !dateOrdered(sc.DateDebut, sc.DateFin) {
		fieldErrs["date_fin"] = "must be on or after date_debut"
	}
	if !validTiming(sc.TimingAttendu) {
		fieldErrs["timing_attendu"] = "must be a time (HH:MM:SS)"
	}
	if !validTiming(sc.TimingReelle) {
		fieldErrs["timing_reelle"] = "must be a time (HH:MM:SS)"
	}
	var err error
	if sc.CadenceAttendu, err = strconv.ParseFloat(c.FormValue("cadence_attendu"), 64); err != nil {
		fieldErrs["cadence_attendu"] = "must be numeric"
	}
	if sc.CadenceReelle, err = strconv.ParseFloat(c.FormValue("cadence_reelle"), 64); err != nil {
		fieldErrs["cadence_reelle"] = "must be numeric"
	}
	return sc, fieldErrs
}

type updateStudyCaseReq struct {
	NomEtude       *string  `json:"nom_etude"`
	DateDebut      *string  `json:"date_debut"`
	DateFin        *string  `json:"date_fin"`
	TimingAttendu  *string  `json:"timing_attendu"`
	TimingReelle   *string  `json:"timing_reelle"`
	CadenceAttendu *float64 `json:"cadence_attendu"`
	CadenceReelle  *float64 `json:"cadence_reelle"`
}

// UpdateInfo applies a partial metadata update. A nom_etude change moves
// the on-disk directory first: conflict on an existing target (409),
// missing source (404), and only after a successful move is the row –
// including the rewritten zip_file path – persisted. That ordering keeps
// the directory and the stored path from observably diverging.
// PUT /study-cases/:id and PUT /study-cases/:id/info
func (h *StudyCaseHandler) UpdateInfo(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateStudyCaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.NomEtude != nil {
		// Trim once so validation, the directory move and the persisted
		// value all see the same name.
		trimmed := strings.TrimSpace(*req.NomEtude)
		req.NomEtude = &trimmed
	}
	if fieldErrs := validateStudyCasePatch(req); len(fieldErrs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fieldErrs})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	current, err := h.Cases.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "study case not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	patch := repository.StudyCasePatch{
		DateDebut:      req.DateDebut,
		DateFin:        req.DateFin,
		TimingAttendu:  req.TimingAttendu,
		TimingReelle:   req.TimingReelle,
		CadenceAttendu: req.CadenceAttendu,
		CadenceReelle:  req.CadenceReelle,
	}

	// Ordering constraint of the combined date check: when only one bound
	// is updated, validate it against the stored other bound.
	debut, fin := current.DateDebut, current.DateFin
	if req.DateDebut != nil {
		debut = *req.DateDebut
	}
	if req.DateFin != nil {
		fin = *req.DateFin
	}
	if !dateOrdered(debut, fin) {
		return c.JSON(http.StatusUnprocessableEntity,
			echo.Map{"errors": map[string]string{"date_fin": "must be on or after date_debut"}})
	}

	renamed := false
	if req.NomEtude != nil && *req.NomEtude != current.NomEtude {
		newZip, err := h.Files.RenameDir(current.NomEtude, *req.NomEtude, current.ZipFile)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrDirExists):
				return c.JSON(http.StatusConflict, echo.Map{"error": "new directory name already exists"})
			case errors.Is(err, storage.ErrDirMissing):
				return c.JSON(http.StatusNotFound, echo.Map{"error": "old directory does not exist"})
			case errors.Is(err, storage.ErrBadName):
				return c.JSON(http.StatusUnprocessableEntity,
					echo.Map{"errors": map[string]string{"nom_etude": "invalid study case name"}})
			}
			log.Printf("study case %d: directory rename failed: %v", id, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "directory rename failed"})
		}
		patch.NomEtude = req.NomEtude
		if current.ZipFile != "" {
			patch.ZipFile = &newZip
		}
		renamed = true
	}

	updated, err := h.Cases.Update(ctx, id, patch)
	if err != nil {
		log.Printf("study case %d: metadata update failed after directory move: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if renamed {
		h.publish(c, queue.StudyCaseEvent{
			Action: queue.ActionRenamed, StudyCaseID: id,
			NomEtude: updated.NomEtude, OldNomEtude: current.NomEtude,
			ZipFile: updated.ZipFile,
		})
	}
	return c.JSON(http.StatusOK, updated)
}

// validateStudyCasePatch checks the optional fields that are present.
func validateStudyCasePatch(req updateStudyCaseReq) map[string]string {
	fieldErrs := map[string]string{}
	if req.NomEtude != nil {
		if err := storage.ValidateName(*req.NomEtude); err != nil {
			fieldErrs["nom_etude"] = "required, at most 255 characters, no path separators"
		}
	}
	if req.DateDebut != nil && !validDate(*req.DateDebut) {
		fieldErrs["date_debut"] = "must be a date (YYYY-MM-DD)"
	}
	if req.DateFin != nil && !validDate(*req.DateFin) {
		fieldErrs["date_fin"] = "must be a date (YYYY-MM-DD)"
	}
	if req.TimingAttendu != nil && !validTiming(*req.TimingAttendu) {
		fieldErrs["timing_attendu"] = "must be a time (HH:MM:SS)"
	}
	if req.TimingReelle != nil && !validTiming(*req.TimingReelle) {
		fieldErrs["timing_reelle"] = "must be a time (HH:MM:SS)"
	}
	return fieldErrs
}

// UploadZip replaces the stored archive: the previous file is deleted,
// the new one stored under the current nom_etude directory, and the row's
// zip_file path updated. POST /study-cases/:id/upload-zip
func (h *StudyCaseHandler) UploadZip(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	fh, err := c.FormFile("zipFile")
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity,
			echo.Map{"errors": map[string]string{"zipFile": "archive file is required"}})
	}
	if err := storage.CheckArchive(fh.Filename, fh.Size); err != nil {
		return c.JSON(http.StatusUnprocessableEntity,
			echo.Map{"errors": map[string]string{"zipFile": err.Error()}})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sc, err := h.Cases.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "study case not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if sc.ZipFile != "" {
		if err := h.Files.DeleteFile(sc.ZipFile); err != nil {
			log.Printf("study case %d: deleting previous archive %s failed: %v", id, sc.ZipFile, err)
		}
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read upload"})
	}
	defer src.Close()

	rel, err := h.Files.SaveArchive(sc.NomEtude, fh.Filename, src)
	if err != nil {
		return storeErrJSON(c, err)
	}
	if err := h.Cases.UpdateZipFile(ctx, id, rel); err != nil {
		log.Printf("study case %d: zip_file update failed: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.Cases.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	h.publish(c, queue.StudyCaseEvent{
		Action: queue.ActionFileReplaced, StudyCaseID: id,
		NomEtude: updated.NomEtude, ZipFile: updated.ZipFile,
	})
	return c.JSON(http.StatusOK, updated)
}

// Delete removes the archive directory recursively and then the metadata
// row. Directory removal is best-effort: a failure is logged but does not
// block the row delete. DELETE /study-cases/:id
func (h *StudyCaseHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sc, err := h.Cases.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "study case not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if err := h.Files.RemoveDir(sc.NomEtude); err != nil {
		log.Printf("study case %d: removing directory %q failed: %v", id, sc.NomEtude, err)
	}
	if err := h.Cases.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.publish(c, queue.StudyCaseEvent{
		Action: queue.ActionDeleted, StudyCaseID: id, NomEtude: sc.NomEtude,
	})
	return c.NoContent(http.StatusNoContent)
}

// storeErrJSON maps file-store validation errors to responses.
func storeErrJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, storage.ErrBadExtension), errors.Is(err, storage.ErrTooLarge):
		return c.JSON(http.StatusUnprocessableEntity,
			echo.Map{"errors": map[string]string{"zipFile": err.Error()}})
	case errors.Is(err, storage.ErrBadName):
		return c.JSON(http.StatusUnprocessableEntity,
			echo.Map{"errors": map[string]string{"nom_etude": err.Error()}})
	}
	log.Printf("file store error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "file storage failed"})
}

// publish emits an audit event without blocking the request; broker
// failures are logged inside the publisher and otherwise ignored.
func (h *StudyCaseHandler) publish(c echo.Context, ev queue.StudyCaseEvent) {
	if uid, err := getUserID(c); err == nil {
		ev.ActorID = uid
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue.PublishStudyCaseEvent(ctx, ev)
	}()
}
