package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/phrazzld/registry-api/internal/api/shared"
	"github.com/phrazzld/registry-api/internal/platform/logger"
	"github.com/phrazzld/registry-api/internal/service"
	"github.com/phrazzld/registry-api/internal/service/photo"
)

// PhotoFormField is the multipart field carrying an uploaded photo.
const PhotoFormField = "photo"

// multipartOverhead is allowed on top of the photo size limit for the
// multipart envelope.
const multipartOverhead = 64 << 10

// PersonHandler handles person-related HTTP requests
type PersonHandler struct {
	personService service.PersonService
	photos        *photo.Encoder
	logger        *slog.Logger
}

// NewPersonHandler creates a new PersonHandler
func NewPersonHandler(
	personService service.PersonService,
	photos *photo.Encoder,
	logger *slog.Logger,
) *PersonHandler {
	if personService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("personService cannot be nil for PersonHandler")
	}
	if photos == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("photo encoder cannot be nil for PersonHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PersonHandler")
	}

	return &PersonHandler{
		personService: personService,
		photos:        photos,
		logger:        logger.With(slog.String("component", "person_handler")),
	}
}

// CreatePerson handles POST /api/form/create requests
func (h *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreatePersonRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		writeError(w, r, err)
		return
	}

	fields, err := req.toFields()
	if err != nil {
		writeError(w, r, err)
		return
	}

	person, err := h.personService.CreatePerson(r.Context(), fields)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Debug("person created", slog.Int64("person_id", person.ID))
	shared.RespondWithMessage(w, r, http.StatusCreated, "Person created successfully", personToResponse(person))
}

// ListPersons handles GET /api/form/all requests
func (h *PersonHandler) ListPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.personService.ListPersons(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Persons retrieved successfully", personsToResponse(persons))
}

// GetPerson handles GET /api/form/{id} requests
func (h *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	person, err := h.personService.GetPerson(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Person retrieved successfully", personToResponse(person))
}

// UpdatePerson handles PUT /api/form/{id} requests
func (h *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req UpdatePersonRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		writeError(w, r, err)
		return
	}

	upd, err := req.toUpdate()
	if err != nil {
		writeError(w, r, err)
		return
	}

	person, err := h.personService.UpdatePerson(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Person updated successfully", personToResponse(person))
}

// DeletePerson handles DELETE /api/form/{id} requests
func (h *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.personService.DeletePerson(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Person deleted successfully", nil)
}

// UploadPhoto handles PUT /api/form/{id}/photo requests.
// The photo arrives as multipart field "photo" and is stored as a data URI.
func (h *PersonHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit := h.photos.MaxBytes()
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	}
	file, header, err := r.FormFile(PhotoFormField)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, photo.ErrTooLarge)
			return
		}
		writeError(w, r, photo.ErrEmpty)
		return
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			log.Warn("failed to close uploaded photo", slog.String("error", cerr.Error()))
		}
	}()

	var src io.Reader = file
	if limit > 0 {
		// One byte past the limit so the encoder sees the file as oversize.
		src = io.LimitReader(file, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dataURI, err := h.photos.EncodeDataURI(data, header.Filename)
	if err != nil {
		writeError(w, r, err)
		return
	}

	person, err := h.personService.UpdatePhoto(r.Context(), id, dataURI)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Debug("person photo updated",
		slog.Int64("person_id", id),
		slog.Int("photo_bytes", len(data)))
	shared.RespondWithMessage(w, r, http.StatusOK, "Photo updated successfully", personToResponse(person))
}
