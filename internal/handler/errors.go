package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"touristiq/iqhub/internal/codegen"
	"touristiq/iqhub/internal/service"
	"touristiq/iqhub/pkg/response"
)

const (
	KindInsufficientCredits   = "INSUFFICIENT_CREDITS"
	KindNoUsesRemaining       = "NO_USES_REMAINING"
	KindAlreadyUsed           = "ALREADY_USED"
	KindPlafondExhausted      = "PLAFOND_EXHAUSTED"
	KindAlreadyActivated      = "ALREADY_ACTIVATED"
	KindNotActivated          = "NOT_ACTIVATED"
	KindGenerationExhausted   = "GENERATION_EXHAUSTED"
	KindUnsupportedLocation   = "UNSUPPORTED_LOCATION"
	KindInvalidLocationFormat = "INVALID_LOCATION_FORMAT"
	KindPartnerExcluded       = "PARTNER_EXCLUDED"
	KindFeedbackExists        = "FEEDBACK_EXISTS"
)

type errorMapping struct {
	err     error
	status  int
	kind    string
	message string
}

// errorTable is the single place where domain errors become HTTP answers.
var errorTable = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.KindUnauthenticated, "Codice IQ non valido o non attivo"},
	{service.ErrSessionInvalid, http.StatusUnauthorized, response.KindUnauthenticated, "Sessione scaduta, effettua di nuovo l'accesso"},
	{service.ErrForbidden, http.StatusForbidden, response.KindForbidden, "Operazione non consentita"},
	{service.ErrCodeNotFound, http.StatusNotFound, response.KindNotFound, "Codice IQ non trovato"},
	{service.ErrCodeConflict, http.StatusConflict, response.KindConflict, "Codice già esistente, riprova"},
	{service.ErrInsufficientCredits, http.StatusBadRequest, KindInsufficientCredits, "Crediti esauriti"},
	{service.ErrNoUsesRemaining, http.StatusBadRequest, KindNoUsesRemaining, "Nessun utilizzo disponibile per nuovi codici monouso"},
	{service.ErrOTCNotFound, http.StatusNotFound, response.KindNotFound, "Codice monouso non trovato"},
	{service.ErrAlreadyUsed, http.StatusConflict, KindAlreadyUsed, "Codice monouso già utilizzato"},
	{service.ErrPlafondExhausted, http.StatusBadRequest, KindPlafondExhausted, "Plafond sconti di 150€ esaurito per questo turista"},
	{service.ErrPartnerExcluded, http.StatusForbidden, KindPartnerExcluded, "Partner escluso dal circuito"},
	{service.ErrAlreadyActivated, http.StatusConflict, KindAlreadyActivated, "Custode del Codice già attivato, usa l'aggiornamento"},
	{service.ErrNotActivated, http.StatusBadRequest, KindNotActivated, "Custode del Codice non ancora attivato"},
	{service.ErrRecoveryNotFound, http.StatusNotFound, response.KindNotFound, "Nessun codice corrisponde ai dati inseriti"},
	{service.ErrRecoveryPairTaken, http.StatusConflict, response.KindConflict, "Combinazione già in uso, scegli un'altra parola segreta"},
	{service.ErrRedemptionNotFound, http.StatusNotFound, response.KindNotFound, "Nessuno sconto recente presso questo partner"},
	{service.ErrFeedbackExists, http.StatusConflict, KindFeedbackExists, "Hai già lasciato un feedback per questo sconto"},
	{service.ErrOfferNotFound, http.StatusNotFound, response.KindNotFound, "Offerta non trovata"},
	{service.ErrProfileNotFound, http.StatusNotFound, response.KindNotFound, "Profilo partner non trovato"},
	{codegen.ErrGenerationExhausted, http.StatusServiceUnavailable, KindGenerationExhausted, "Impossibile generare un codice univoco, riprova"},
	{codegen.ErrUnsupportedLocation, http.StatusBadRequest, KindUnsupportedLocation, "Località non supportata"},
	{codegen.ErrInvalidLocationFormat, http.StatusBadRequest, KindInvalidLocationFormat, "La provincia deve essere di 2 o 3 lettere"},
	{codegen.ErrInvalidRole, http.StatusBadRequest, response.KindValidation, "Ruolo non valido per un codice professionale"},
}

// writeError answers with the mapped status and kind, or 500 for anything unknown.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		response.BadRequest(c, verr.Msg)
		return
	}
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			response.Error(c, m.status, m.kind, m.message)
			return
		}
	}
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	response.InternalError(c, "Errore interno del server")
}
