package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"

	"github.com/jortega/backoffice-api/internal/config"
)

// LocationHandler is a thin proxy to two upstream APIs: Google Geocoding
// for reverse lookups and OpenAI chat completions for short place
// descriptions. Calls are synchronous and single-attempt with a request
// timeout; there is no retry or backoff.
type LocationHandler struct {
	Cfg    config.Config
	Client *http.Client

	// Overridable in tests; default to the real upstream endpoints.
	GeocodeURL string
	OpenAIURL  string
}

func NewLocationHandler(cfg config.Config) *LocationHandler {
	return &LocationHandler{
		Cfg:        cfg,
		Client:     &http.Client{Timeout: 10 * time.Second},
		GeocodeURL: "https://maps.googleapis.com/maps/api/geocode/json",
		OpenAIURL:  "https://api.openai.com/v1/chat/completions",
	}
}

type cityNameReq struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type describeReq struct {
	CityName string `json:"city_name"`
	Topic    string `json:"topic"`
}

// geocodeResponse mirrors the subset of the Google Geocoding payload we
// read.
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// openAIResponse mirrors the subset of the chat completions payload we read.
type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// GetCityName handles POST /api/locations/get-city-name/: reverse geocodes
// coordinates into a city name, preferring the locality component, then
// administrative_area_level_2, then the formatted address.
func (h *LocationHandler) GetCityName(c echo.Context) error {
	var req cityNameReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if err := (validation.Errors{
		"latitude":  validation.Validate(req.Latitude, validation.NotNil, validation.Min(-90.0), validation.Max(90.0)),
		"longitude": validation.Validate(req.Longitude, validation.NotNil, validation.Min(-180.0), validation.Max(180.0)),
	}).Filter(); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	if h.Cfg.GeocodingKey == "" {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Google Geocoding API key not configured"})
	}

	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%f,%f", *req.Latitude, *req.Longitude))
	q.Set("key", h.Cfg.GeocodingKey)
	q.Set("language", "es")

	httpReq, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, h.GeocodeURL+"?"+q.Encode(), nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al conectar con Google API"})
	}
	resp, err := h.Client.Do(httpReq)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al conectar con Google API: " + err.Error()})
	}
	defer resp.Body.Close()

	var data geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al conectar con Google API: " + err.Error()})
	}
	if data.Status != "OK" || len(data.Results) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No se pudo obtener la ubicación"})
	}

	result := data.Results[0]
	cityName := result.FormattedAddress
	for _, comp := range result.AddressComponents {
		if containsType(comp.Types, "locality") {
			cityName = comp.LongName
			break
		}
		if containsType(comp.Types, "administrative_area_level_2") && cityName == result.FormattedAddress {
			cityName = comp.LongName
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"city_name":         cityName,
		"formatted_address": result.FormattedAddress,
	})
}

// GenerateDescription handles POST /api/locations/generate-description/:
// asks the model for a one-liner about a city on a fixed topic and trims
// the answer to 40 characters.
func (h *LocationHandler) GenerateDescription(c echo.Context) error {
	var req describeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	if err := (validation.Errors{
		"city_name": validation.Validate(req.CityName, validation.Required),
		"topic":     validation.Validate(req.Topic, validation.Required, validation.In("Historia", "Geografía", "Economía")),
	}).Filter(); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	if h.Cfg.OpenAIKey == "" {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "OpenAI API key not configured"})
	}

	prompt := fmt.Sprintf(
		"Escribe una frase corta (máximo 40 caracteres) sobre %s relacionada con %s. La frase debe ser informativa y concisa.",
		req.CityName, req.Topic)
	payload := map[string]any{
		"model": "gpt-4o-mini",
		"messages": []map[string]string{
			{"role": "system", "content": "Eres un asistente que genera descripciones breves y precisas sobre lugares."},
			{"role": "user", "content": prompt},
		},
		"max_tokens":  50,
		"temperature": 0.7,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	httpReq, err := http.NewRequestWithContext(c.Request().Context(), http.MethodPost, h.OpenAIURL, bytes.NewReader(body))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+h.Cfg.OpenAIKey)

	resp, err := h.Client.Do(httpReq)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	defer resp.Body.Close()

	var data openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if resp.StatusCode != http.StatusOK || data.Error != nil {
		msg := ""
		if data.Error != nil {
			msg = data.Error.Message
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": friendlyOpenAIError(resp.StatusCode, msg)})
	}
	if len(data.Choices) == 0 {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "respuesta vacía del modelo"})
	}

	description := strings.TrimSpace(data.Choices[0].Message.Content)
	if runes := []rune(description); len(runes) > 40 {
		description = string(runes[:37]) + "..."
	}
	return c.JSON(http.StatusOK, echo.Map{"description": description})
}

func containsType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

// friendlyOpenAIError maps upstream quota and auth failures onto the
// Spanish messages the frontend shows verbatim.
func friendlyOpenAIError(status int, msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case status == http.StatusTooManyRequests || strings.Contains(lower, "insufficient_quota"):
		return "Tu cuenta de OpenAI ha excedido la cuota disponible o tiene problemas de facturación. " +
			"Por favor, verifica tu plan y método de pago en https://platform.openai.com/account/billing"
	case status == http.StatusUnauthorized || strings.Contains(lower, "invalid api key") || strings.Contains(lower, "authentication"):
		return "La API key de OpenAI no es válida o ha sido revocada. " +
			"Verifica que la clave en el archivo .env coincida con la de tu dashboard: " +
			"https://platform.openai.com/api-keys"
	}
	if msg == "" {
		return fmt.Sprintf("error del proveedor (HTTP %d)", status)
	}
	return msg
}
