package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MarlonCdaCunha/detetive"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// apiResponse is the body shape shared by every JSON endpoint.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GameData is the decoded view of a saved investigation.
type GameData struct {
	GameNumber string   `json:"gameNumber"`
	Suspects   []string `json:"suspects"`
	Weapons    []string `json:"weapons"`
	Locations  []string `json:"locations"`
}

// SavedGame is a games row prepared for the history view. When the stored
// sequences fail to decode the raw row is kept and the card slices stay
// empty.
type SavedGame struct {
	Game
	SuspectCards  []string
	WeaponCards   []string
	LocationCards []string
	FormattedDate string
}

// CardState is one card on the play board and whether the player already
// marked it off.
type CardState struct {
	Name   string
	Marked bool
}

type partidaPage struct {
	GameData  *GameData
	Suspects  []CardState
	Weapons   []CardState
	Locations []CardState
}

func cardStates(deck, marked []string) []CardState {
	states := make([]CardState, 0, len(deck))
	for _, name := range deck {
		state := CardState{Name: name}
		for _, m := range marked {
			if m == name {
				state.Marked = true
				break
			}
		}
		states = append(states, state)
	}

	return states
}

type historicoPage struct {
	Cases      []SolvedCase
	SavedGames []SavedGame
	Error      string
}

func decodeGame(game *Game) (*GameData, error) {
	suspects, err := detetive.DecodeCards(game.Suspects)
	if err != nil {
		return nil, err
	}

	weapons, err := detetive.DecodeCards(game.Weapons)
	if err != nil {
		return nil, err
	}

	locations, err := detetive.DecodeCards(game.Locations)
	if err != nil {
		return nil, err
	}

	return &GameData{
		GameNumber: game.GameNumber,
		Suspects:   suspects,
		Weapons:    weapons,
		Locations:  locations,
	}, nil
}

func indexHandler(w http.ResponseWriter, r *http.Request) {
	Renderer.HTML(w, http.StatusOK, "index", nil)
}

func welcomeHandler(w http.ResponseWriter, r *http.Request) {
	Renderer.HTML(w, http.StatusOK, "welcome", nil)
}

func novaInvestigacaoHandler(w http.ResponseWriter, r *http.Request) {
	Renderer.HTML(w, http.StatusOK, "nova-investigacao", nil)
}

// partidaHandler renders the play view. With a game query parameter it loads
// that investigation; a missing row or malformed stored data renders the view
// with null game data instead of failing the request. Without the parameter
// it hands out the next free game number.
func partidaHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameNumber := ugcPolicy.Sanitize(r.URL.Query().Get("game"))
		if gameNumber != "" {
			game, err := getGameByNumber(db, gameNumber)
			if err != nil {
				log.Errorw("could not load game", "gameNumber", gameNumber, zap.Error(err))
				Renderer.HTML(w, http.StatusOK, "partida", buildPartidaPage(nil))
				return
			}

			data, err := decodeGame(game)
			if err != nil {
				log.Errorw("could not decode game data", "gameNumber", gameNumber, zap.Error(err))
				Renderer.HTML(w, http.StatusOK, "partida", buildPartidaPage(nil))
				return
			}

			Renderer.HTML(w, http.StatusOK, "partida", buildPartidaPage(data))
			return
		}

		next, err := nextGameNumber(db)
		if err != nil {
			log.Errorw("could not compute next game number", zap.Error(err))
			next = "1"
		}

		Renderer.HTML(w, http.StatusOK, "partida", buildPartidaPage(&GameData{
			GameNumber: next,
			Suspects:   []string{},
			Weapons:    []string{},
			Locations:  []string{},
		}))
	}
}

func buildPartidaPage(data *GameData) partidaPage {
	page := partidaPage{GameData: data}

	var suspects, weapons, locations []string
	if data != nil {
		suspects, weapons, locations = data.Suspects, data.Weapons, data.Locations
	}

	page.Suspects = cardStates(detetive.Suspects, suspects)
	page.Weapons = cardStates(detetive.Weapons, weapons)
	page.Locations = cardStates(detetive.Locations, locations)

	return page
}

// SaveGameRequest is the request body for saving an investigation.
type SaveGameRequest struct {
	GameNumber string   `json:"gameNumber"`
	Suspects   []string `json:"suspects"`
	Weapons    []string `json:"weapons"`
	Locations  []string `json:"locations"`
}

func saveGameHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Errorw("could not read body", zap.Error(err))
			Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao salvar a investigação"})
			return
		}

		if req.GameNumber == "" || req.Suspects == nil || req.Weapons == nil || req.Locations == nil {
			Renderer.JSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Dados incompletos"})
			return
		}

		if err := db.AutoMigrate(&Game{}); err != nil {
			log.Errorw("could not ensure games table", zap.Error(err))
			Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao criar tabela de jogos"})
			return
		}

		suspects, err := detetive.EncodeCards(req.Suspects)
		if err != nil {
			log.Errorw("could not encode game data", "gameNumber", req.GameNumber, zap.Error(err))
			Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao salvar a investigação"})
			return
		}

		weapons, err := detetive.EncodeCards(req.Weapons)
		if err != nil {
			log.Errorw("could not encode game data", "gameNumber", req.GameNumber, zap.Error(err))
			Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao salvar a investigação"})
			return
		}

		locations, err := detetive.EncodeCards(req.Locations)
		if err != nil {
			log.Errorw("could not encode game data", "gameNumber", req.GameNumber, zap.Error(err))
			Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao salvar a investigação"})
			return
		}

		saveGame(db, w, req.GameNumber, suspects, weapons, locations)
	}
}

// saveGame performs the lookup-then-update-or-insert step of a save. At most
// one live row exists per game number; this is what maintains that.
func saveGame(db *gorm.DB, w http.ResponseWriter, gameNumber, suspects, weapons, locations string) {
	existing, err := getGameByNumber(db, gameNumber)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorw("could not check for existing game", "gameNumber", gameNumber, zap.Error(err))
		Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao verificar jogo existente"})
		return
	}

	if existing != nil {
		if err := updateGame(db, gameNumber, suspects, weapons, locations); err != nil {
			log.Errorw("could not update game", "gameNumber", gameNumber, zap.Error(err))
			Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao atualizar jogo"})
			return
		}

		Renderer.JSON(w, http.StatusOK, apiResponse{Success: true, Message: "Investigação atualizada com sucesso"})
		return
	}

	if err := insertGame(db, gameNumber, suspects, weapons, locations); err != nil {
		log.Errorw("could not create game", "gameNumber", gameNumber, zap.Error(err))
		Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao criar novo jogo"})
		return
	}

	Renderer.JSON(w, http.StatusOK, apiResponse{Success: true, Message: "Investigação salva com sucesso"})
}

func deleteGameHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameNumber := ugcPolicy.Sanitize(chi.URLParamFromCtx(r.Context(), "gameNumber"))
		if gameNumber == "" {
			Renderer.JSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Número de jogo inválido"})
			return
		}

		removed, err := deleteGame(db, gameNumber)
		if err != nil {
			log.Errorw("could not delete game", "gameNumber", gameNumber, zap.Error(err))
			Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao excluir jogo"})
			return
		}

		if removed == 0 {
			Renderer.JSON(w, http.StatusNotFound, apiResponse{Success: false, Message: "Jogo não encontrado"})
			return
		}

		Renderer.JSON(w, http.StatusOK, apiResponse{Success: true, Message: "Investigação excluída com sucesso"})
	}
}

// SolveCaseRequest is the request body for closing an investigation with an
// accusation.
type SolveCaseRequest struct {
	GameNumber string `json:"gameNumber"`
	Suspect    string `json:"suspect"`
	Weapon     string `json:"weapon"`
	Location   string `json:"location"`
	UserName   string `json:"userName"`
}

// solveCaseHandler records the accusation in game_history and then removes
// the in-progress game. The two writes are not atomic: when the delete fails
// after the insert succeeded, the history row stays behind.
func solveCaseHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SolveCaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Errorw("could not read body", zap.Error(err))
			Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao resolver o caso"})
			return
		}

		if req.GameNumber == "" || req.Suspect == "" || req.Weapon == "" || req.Location == "" {
			Renderer.JSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Dados incompletos"})
			return
		}

		record := GameHistory{
			Suspect:    req.Suspect,
			Weapon:     req.Weapon,
			Location:   req.Location,
			Solved:     1,
			UserName:   req.UserName,
			GameNumber: req.GameNumber,
		}

		if err := insertSolvedCase(db, &record); err != nil {
			log.Errorw("could not record solved case", "gameNumber", req.GameNumber, zap.Error(err))
			Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao registrar caso resolvido"})
			return
		}

		if _, err := deleteGame(db, req.GameNumber); err != nil {
			log.Errorw("could not remove solved game", "gameNumber", req.GameNumber, zap.Error(err))
			Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao finalizar investigação"})
			return
		}

		Renderer.JSON(w, http.StatusOK, apiResponse{Success: true, Message: "Caso resolvido com sucesso!"})
	}
}

// historicoHandler renders saved investigations and solved cases. A failing
// fetch renders the page with that list empty and an inline error; a game
// whose stored data fails to decode is listed raw instead of being dropped.
func historicoHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := listGames(db)
		if err != nil {
			log.Errorw("could not fetch saved games", zap.Error(err))
			Renderer.HTML(w, http.StatusOK, "historico", historicoPage{
				Cases:      []SolvedCase{},
				SavedGames: []SavedGame{},
				Error:      "Erro ao carregar histórico",
			})
			return
		}

		cases, err := listSolvedCases(db)
		if err != nil {
			log.Errorw("could not fetch solved cases", zap.Error(err))
			Renderer.HTML(w, http.StatusOK, "historico", historicoPage{
				Cases:      []SolvedCase{},
				SavedGames: wrapGames(games),
				Error:      "Erro ao carregar histórico de casos",
			})
			return
		}

		Renderer.HTML(w, http.StatusOK, "historico", historicoPage{
			Cases:      cases,
			SavedGames: wrapGames(games),
		})
	}
}

func wrapGames(games []Game) []SavedGame {
	saved := make([]SavedGame, 0, len(games))
	for _, game := range games {
		data, err := decodeGame(&game)
		if err != nil {
			log.Errorw("could not decode game data", "gameNumber", game.GameNumber, zap.Error(err))
			saved = append(saved, SavedGame{Game: game})
			continue
		}

		saved = append(saved, SavedGame{
			Game:          game,
			SuspectCards:  data.Suspects,
			WeaponCards:   data.Weapons,
			LocationCards: data.Locations,
			FormattedDate: game.UpdatedAt.Format("02/01/2006"),
		})
	}

	return saved
}

type gameResponse struct {
	apiResponse
	Game *GameData `json:"game"`
}

type gamesResponse struct {
	apiResponse
	Games []GameData `json:"games"`
}

func getGameHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameNumber := ugcPolicy.Sanitize(chi.URLParamFromCtx(r.Context(), "gameNumber"))

		game, err := getGameByNumber(db, gameNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				Renderer.JSON(w, http.StatusNotFound, apiResponse{Success: false, Message: "Jogo não encontrado"})
				return
			}

			log.Errorw("could not load game", "gameNumber", gameNumber, zap.Error(err))
			Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao carregar investigação"})
			return
		}

		data, err := decodeGame(game)
		if err != nil {
			log.Errorw("could not decode game data", "gameNumber", gameNumber, zap.Error(err))
			data = &GameData{
				GameNumber: game.GameNumber,
				Suspects:   []string{},
				Weapons:    []string{},
				Locations:  []string{},
			}
		}

		Renderer.JSON(w, http.StatusOK, gameResponse{
			apiResponse: apiResponse{Success: true},
			Game:        data,
		})
	}
}

func listGamesHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := listGames(db)
		if err != nil {
			log.Errorw("could not fetch saved games", zap.Error(err))
			Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao carregar investigações"})
			return
		}

		payload := make([]GameData, 0, len(games))
		for _, game := range games {
			data, err := decodeGame(&game)
			if err != nil {
				log.Errorw("could not decode game data", "gameNumber", game.GameNumber, zap.Error(err))
				data = &GameData{
					GameNumber: game.GameNumber,
					Suspects:   []string{},
					Weapons:    []string{},
					Locations:  []string{},
				}
			}
			payload = append(payload, *data)
		}

		Renderer.JSON(w, http.StatusOK, gamesResponse{
			apiResponse: apiResponse{Success: true},
			Games:       payload,
		})
	}
}
