package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/bracket-engine/services"
)

type BracketHandler struct {
	bracketService   services.BracketService
	standingsService services.StandingsService
}

func NewBracketHandler(bs services.BracketService, ss services.StandingsService) *BracketHandler {
	return &BracketHandler{
		bracketService:   bs,
		standingsService: ss,
	}
}

// GenerateHandler godoc
// @Summary Сгенерировать сетку турнира
// @Tags brackets
// @Description Посев команд и построение сетки. Существующая сетка турнира заменяется целиком.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.GenerateBracketInput true "Команды, формат и опции"
// @Success 201 {object} services.GenerateResult
// @Failure 400 {object} map[string]string "Неизвестный формат"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 409 {object} map[string]string "Турнир уже завершён"
// @Failure 422 {object} map[string]string "Недостаточно команд или неверные опции"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket [post]
func (h *BracketHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.GenerateBracketInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.bracketService.GenerateBracket(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	auditLog(r, "bracket generated via api", slog.Int("tournament_id", tournamentID))

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler godoc
// @Summary Сетка турнира для отображения
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} brackets.BracketView
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID}/bracket [get]
func (h *BracketHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GetBracketView(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler обрабатывает GET /tournaments/{tournamentID}/standings
func (h *BracketHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.standingsService.GetStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvancingHandler godoc
// @Summary Команды, выходящие из групп
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} services.AdvancingResult
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 422 {object} map[string]string "Турнир не групповой"
// @Router /tournaments/{tournamentID}/standings/advancing [get]
func (h *BracketHandler) AdvancingHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.standingsService.GetAdvancingTeams(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"advancing": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
