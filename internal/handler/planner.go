package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/twoofus/server/internal/ctxkeys"
	"github.com/twoofus/server/internal/middleware"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/service"
)

// defaultEventSpan is the event window when the client gives no range.
const defaultEventSpan = 90 * 24 * time.Hour

type PlannerHandler struct {
	plannerService *service.PlannerService
}

func NewPlannerHandler(plannerService *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{plannerService: plannerService}
}

// Events handles GET /api/rooms/{roomID}/events?from=&to= (RFC 3339)
func (h *PlannerHandler) Events(w http.ResponseWriter, r *http.Request) {
	from, to, ok := timeRange(w, r)
	if !ok {
		return
	}

	events, err := h.plannerService.Events(r.Context(), ctxkeys.RoomID(r.Context()), from, to)
	if err != nil {
		writeError(w, r, err, "list events")
		return
	}
	if events == nil {
		events = []*model.SharedEvent{}
	}
	middleware.JSONResponse(w, http.StatusOK, events)
}

// CreateEvent handles POST /api/rooms/{roomID}/events
func (h *PlannerHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req service.EventInput
	if !decode(w, r, &req) {
		return
	}

	event, err := h.plannerService.CreateEvent(r.Context(), ctxkeys.RoomID(r.Context()), ctxkeys.UserID(r.Context()), req)
	if err != nil {
		writeError(w, r, err, "create event")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, event)
}

// DeleteEvent handles DELETE /api/rooms/{roomID}/events/{id}
func (h *PlannerHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	err := h.plannerService.DeleteEvent(r.Context(), ctxkeys.RoomID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tasks handles GET /api/rooms/{roomID}/tasks?completed=true
func (h *PlannerHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	includeCompleted, _ := strconv.ParseBool(r.URL.Query().Get("completed"))

	tasks, err := h.plannerService.Tasks(r.Context(), ctxkeys.RoomID(r.Context()), includeCompleted)
	if err != nil {
		writeError(w, r, err, "list tasks")
		return
	}
	if tasks == nil {
		tasks = []*model.SharedTask{}
	}
	middleware.JSONResponse(w, http.StatusOK, tasks)
}

// CreateTask handles POST /api/rooms/{roomID}/tasks
func (h *PlannerHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req service.TaskInput
	if !decode(w, r, &req) {
		return
	}

	task, err := h.plannerService.CreateTask(r.Context(), ctxkeys.RoomID(r.Context()), ctxkeys.UserID(r.Context()), req)
	if err != nil {
		writeError(w, r, err, "create task")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, task)
}

// CompleteTask handles POST /api/rooms/{roomID}/tasks/{id}/complete
func (h *PlannerHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	err := h.plannerService.CompleteTask(r.Context(), ctxkeys.RoomID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "complete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTask handles DELETE /api/rooms/{roomID}/tasks/{id}
func (h *PlannerHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	err := h.plannerService.DeleteTask(r.Context(), ctxkeys.RoomID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Milestones handles GET /api/rooms/{roomID}/milestones
func (h *PlannerHandler) Milestones(w http.ResponseWriter, r *http.Request) {
	milestones, err := h.plannerService.Milestones(r.Context(), ctxkeys.RoomID(r.Context()))
	if err != nil {
		writeError(w, r, err, "list milestones")
		return
	}
	if milestones == nil {
		milestones = []*model.Milestone{}
	}
	middleware.JSONResponse(w, http.StatusOK, milestones)
}

// CreateMilestone handles POST /api/rooms/{roomID}/milestones
func (h *PlannerHandler) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title      string `json:"title"`
		HappenedOn string `json:"happened_on"`
	}
	if !decode(w, r, &req) {
		return
	}

	milestone, err := h.plannerService.CreateMilestone(r.Context(), ctxkeys.RoomID(r.Context()), ctxkeys.UserID(r.Context()), req.Title, req.HappenedOn)
	if err != nil {
		writeError(w, r, err, "create milestone")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, milestone)
}

// DeleteMilestone handles DELETE /api/rooms/{roomID}/milestones/{id}
func (h *PlannerHandler) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
	err := h.plannerService.DeleteMilestone(r.Context(), ctxkeys.RoomID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "delete milestone")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Memories handles GET /api/rooms/{roomID}/memories
func (h *PlannerHandler) Memories(w http.ResponseWriter, r *http.Request) {
	memories, err := h.plannerService.Memories(r.Context(), ctxkeys.RoomID(r.Context()))
	if err != nil {
		writeError(w, r, err, "list memories")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, memories)
}

// CreateMemory handles POST /api/rooms/{roomID}/memories. The photo, if any,
// was uploaded to the bucket beforehand; only its key is sent.
func (h *PlannerHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	var req service.MemoryInput
	if !decode(w, r, &req) {
		return
	}

	memory, err := h.plannerService.CreateMemory(r.Context(), ctxkeys.RoomID(r.Context()), ctxkeys.UserID(r.Context()), req)
	if err != nil {
		writeError(w, r, err, "create memory")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, memory)
}

// DeleteMemory handles DELETE /api/rooms/{roomID}/memories/{id}
func (h *PlannerHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	err := h.plannerService.DeleteMemory(r.Context(), ctxkeys.RoomID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "delete memory")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DateIdeas handles GET /api/rooms/{roomID}/date-ideas
func (h *PlannerHandler) DateIdeas(w http.ResponseWriter, r *http.Request) {
	ideas, err := h.plannerService.DateIdeas(r.Context(), ctxkeys.RoomID(r.Context()))
	if err != nil {
		writeError(w, r, err, "list date ideas")
		return
	}
	if ideas == nil {
		ideas = []*model.DateIdea{}
	}
	middleware.JSONResponse(w, http.StatusOK, ideas)
}

// CreateDateIdea handles POST /api/rooms/{roomID}/date-ideas
func (h *PlannerHandler) CreateDateIdea(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if !decode(w, r, &req) {
		return
	}

	idea, err := h.plannerService.CreateDateIdea(r.Context(), ctxkeys.RoomID(r.Context()), ctxkeys.UserID(r.Context()), &model.DateIdea{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		writeError(w, r, err, "create date idea")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, idea)
}

// PlanDate handles POST /api/rooms/{roomID}/date-ideas/{id}/plan
func (h *PlannerHandler) PlanDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartsAt   time.Time  `json:"starts_at"`
		ReminderAt *time.Time `json:"reminder_at"`
	}
	if !decode(w, r, &req) {
		return
	}

	event, plan, err := h.plannerService.PlanDate(r.Context(), ctxkeys.RoomID(r.Context()), ctxkeys.UserID(r.Context()), r.PathValue("id"), req.StartsAt, req.ReminderAt)
	if err != nil {
		writeError(w, r, err, "plan date")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, map[string]any{
		"event": event,
		"plan":  plan,
	})
}

// CompleteDatePlan handles POST /api/rooms/{roomID}/date-plans/{id}/complete
func (h *PlannerHandler) CompleteDatePlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating *int `json:"rating"`
	}
	if !decode(w, r, &req) {
		return
	}

	err := h.plannerService.CompleteDatePlan(r.Context(), ctxkeys.RoomID(r.Context()), r.PathValue("id"), req.Rating)
	if err != nil {
		writeError(w, r, err, "complete date plan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// timeRange reads from/to query parameters, defaulting to the next 90 days.
func timeRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from := time.Now()
	to := from.Add(defaultEventSpan)

	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "from must be RFC 3339")
			return time.Time{}, time.Time{}, false
		}
		from = t
		if q.Get("to") == "" {
			to = from.Add(defaultEventSpan)
		}
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "to must be RFC 3339")
			return time.Time{}, time.Time{}, false
		}
		to = t
	}
	return from, to, true
}
