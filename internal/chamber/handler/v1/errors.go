package v1

import (
	"errors"
	"net/http"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
	"github.com/kiosk404/roundtable/pkg/errorx"
)

// Chamber handler error codes.
// Code format: 2XXYYZ
//   - 2:  module prefix (chamber handler)
//   - XX: resource group (00=common, 01=agent, 02=meeting, 03=turn,
//     04=agenda, 05=minutes, 06=mindmap, 07=export, 08=events)
//   - YY: sequential error number
//   - Z:  reserved (0)

const (
	// Common request errors (200xxx).
	ErrBind       = 200001
	ErrValidation = 200002

	// Agent errors (2001xx).
	ErrAgentNotFound = 200101
	ErrAgentCreate   = 200102
	ErrAgentList     = 200103
	ErrAgentUpdate   = 200104
	ErrAgentDelete   = 200105
	ErrAgentInUse    = 200106
	ErrAgentProbe    = 200107

	// Meeting errors (2002xx).
	ErrMeetingNotFound   = 200201
	ErrMeetingCreate     = 200202
	ErrMeetingList       = 200203
	ErrMeetingDelete     = 200204
	ErrMeetingTransition = 200205
	ErrMeetingEnded      = 200206
	ErrConfigUpdate      = 200207

	// Turn and message errors (2003xx).
	ErrMessageAdd       = 200301
	ErrTurnRun          = 200302
	ErrRoundRun         = 200303
	ErrMeetingNotActive = 200304
	ErrMaxRounds        = 200305
	ErrNotParticipant   = 200306

	// Agenda errors (2004xx).
	ErrAgendaAdd      = 200401
	ErrAgendaNotFound = 200402
	ErrAgendaUpdate   = 200403

	// Minutes errors (2005xx).
	ErrMinutesGenerate = 200501
	ErrMinutesNotFound = 200502
	ErrMinutesUpdate   = 200503

	// Mind map errors (2006xx).
	ErrMindMapGenerate = 200601
	ErrMindMapNotFound = 200602
	ErrMindMapUpdate   = 200603

	// Export errors (2007xx).
	ErrExportFormat = 200701
	ErrExportRender = 200702

	// Event stream errors (2008xx).
	ErrSubscribe = 200801
)

func init() {
	// Common.
	errorx.MustRegister(newCoder(ErrBind, http.StatusBadRequest, "Request body binding failed"))
	errorx.MustRegister(newCoder(ErrValidation, http.StatusBadRequest, "Request validation failed"))

	// Agent.
	errorx.MustRegister(newCoder(ErrAgentNotFound, http.StatusNotFound, "Agent not found"))
	errorx.MustRegister(newCoder(ErrAgentCreate, http.StatusInternalServerError, "Failed to create agent"))
	errorx.MustRegister(newCoder(ErrAgentList, http.StatusInternalServerError, "Failed to list agents"))
	errorx.MustRegister(newCoder(ErrAgentUpdate, http.StatusInternalServerError, "Failed to update agent"))
	errorx.MustRegister(newCoder(ErrAgentDelete, http.StatusInternalServerError, "Failed to delete agent"))
	errorx.MustRegister(newCoder(ErrAgentInUse, http.StatusConflict, "Agent is a participant in a live meeting"))
	errorx.MustRegister(newCoder(ErrAgentProbe, http.StatusBadGateway, "Agent connection test failed"))

	// Meeting.
	errorx.MustRegister(newCoder(ErrMeetingNotFound, http.StatusNotFound, "Meeting not found"))
	errorx.MustRegister(newCoder(ErrMeetingCreate, http.StatusInternalServerError, "Failed to create meeting"))
	errorx.MustRegister(newCoder(ErrMeetingList, http.StatusInternalServerError, "Failed to list meetings"))
	errorx.MustRegister(newCoder(ErrMeetingDelete, http.StatusInternalServerError, "Failed to delete meeting"))
	errorx.MustRegister(newCoder(ErrMeetingTransition, http.StatusInternalServerError, "Failed to change meeting status"))
	errorx.MustRegister(newCoder(ErrMeetingEnded, http.StatusConflict, "Meeting has already ended"))
	errorx.MustRegister(newCoder(ErrConfigUpdate, http.StatusInternalServerError, "Failed to update meeting config"))

	// Turns and messages.
	errorx.MustRegister(newCoder(ErrMessageAdd, http.StatusInternalServerError, "Failed to add message"))
	errorx.MustRegister(newCoder(ErrTurnRun, http.StatusInternalServerError, "Turn execution failed"))
	errorx.MustRegister(newCoder(ErrRoundRun, http.StatusInternalServerError, "Round execution failed"))
	errorx.MustRegister(newCoder(ErrMeetingNotActive, http.StatusConflict, "Meeting is not active"))
	errorx.MustRegister(newCoder(ErrMaxRounds, http.StatusConflict, "Meeting reached its round limit"))
	errorx.MustRegister(newCoder(ErrNotParticipant, http.StatusBadRequest, "Agent is not a meeting participant"))

	// Agenda.
	errorx.MustRegister(newCoder(ErrAgendaAdd, http.StatusInternalServerError, "Failed to add agenda item"))
	errorx.MustRegister(newCoder(ErrAgendaNotFound, http.StatusNotFound, "Agenda item not found"))
	errorx.MustRegister(newCoder(ErrAgendaUpdate, http.StatusInternalServerError, "Failed to update agenda item"))

	// Minutes.
	errorx.MustRegister(newCoder(ErrMinutesGenerate, http.StatusInternalServerError, "Failed to generate minutes"))
	errorx.MustRegister(newCoder(ErrMinutesNotFound, http.StatusNotFound, "Minutes not generated yet"))
	errorx.MustRegister(newCoder(ErrMinutesUpdate, http.StatusInternalServerError, "Failed to update minutes"))

	// Mind map.
	errorx.MustRegister(newCoder(ErrMindMapGenerate, http.StatusInternalServerError, "Failed to generate mind map"))
	errorx.MustRegister(newCoder(ErrMindMapNotFound, http.StatusNotFound, "Mind map not generated yet"))
	errorx.MustRegister(newCoder(ErrMindMapUpdate, http.StatusInternalServerError, "Failed to update mind map"))

	// Export.
	errorx.MustRegister(newCoder(ErrExportFormat, http.StatusBadRequest, "Unknown export format"))
	errorx.MustRegister(newCoder(ErrExportRender, http.StatusInternalServerError, "Export rendering failed"))

	// Events.
	errorx.MustRegister(newCoder(ErrSubscribe, http.StatusInternalServerError, "Failed to subscribe to meeting events"))
}

type coder struct {
	code int
	http int
	msg  string
}

func newCoder(code, httpStatus int, msg string) *coder {
	return &coder{code: code, http: httpStatus, msg: msg}
}

func (c *coder) Code() int         { return c.code }
func (c *coder) HTTPStatus() int   { return c.http }
func (c *coder) String() string    { return c.msg }
func (c *coder) Reference() string { return "" }

// wrapDomain maps the domain sentinel errors onto their registered codes,
// falling back to the handler-supplied code for everything else.
func wrapDomain(err error, fallback int, format string, args ...interface{}) error {
	code := fallback
	switch {
	case errors.Is(err, errno.ErrValidation):
		code = ErrValidation
	case errors.Is(err, errno.ErrAgentNotFound):
		code = ErrAgentNotFound
	case errors.Is(err, errno.ErrMeetingNotFound):
		code = ErrMeetingNotFound
	case errors.Is(err, errno.ErrAgendaItemNotFound):
		code = ErrAgendaNotFound
	case errors.Is(err, errno.ErrMinutesNotFound):
		code = ErrMinutesNotFound
	case errors.Is(err, errno.ErrMindMapNotFound):
		code = ErrMindMapNotFound
	case errors.Is(err, errno.ErrMeetingNotActive):
		code = ErrMeetingNotActive
	case errors.Is(err, errno.ErrMeetingEnded):
		code = ErrMeetingEnded
	case errors.Is(err, errno.ErrNotParticipant):
		code = ErrNotParticipant
	case errors.Is(err, errno.ErrMaxRoundsReached):
		code = ErrMaxRounds
	case errors.Is(err, errno.ErrAgentInUse):
		code = ErrAgentInUse
	}
	return errorx.WrapC(err, code, format, args...)
}
