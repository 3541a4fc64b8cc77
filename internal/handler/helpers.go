package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"touristiq/iqhub/internal/handler/middleware"
	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/service"
	"touristiq/iqhub/pkg/response"
)

// currentSession returns the session set by middleware.SessionAuth. It
// answers 401 and returns nil when none is present.
func currentSession(c *gin.Context) *service.Session {
	v, ok := c.Get(middleware.ContextKeySession)
	if ok {
		if sess, ok := v.(*service.Session); ok {
			return sess
		}
	}
	response.Unauthorized(c, "Accesso richiesto")
	return nil
}

// money renders a decimal amount as a JSON number with cents precision.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func moneyPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	v := money(*d)
	return &v
}

type oneTimeCodeResponse struct {
	Code               string   `json:"code"`
	TouristCode        string   `json:"touristIqCode"`
	IsUsed             bool     `json:"isUsed"`
	PartnerCode        *string  `json:"partnerCode,omitempty"`
	PartnerName        *string  `json:"partnerName,omitempty"`
	OriginalAmount     *float64 `json:"originalAmount,omitempty"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
	DiscountAmount     *float64 `json:"discountAmount,omitempty"`
	OfferDescription   *string  `json:"offerDescription,omitempty"`
	CreatedAt          string   `json:"createdAt"`
	UsedAt             *string  `json:"usedAt,omitempty"`
}

// toOneTimeCodeResponses renders codes for their owner. Partner views pass
// maskTourist so the tourist's IQCode never leaves in clear.
func toOneTimeCodeResponses(codes []model.OneTimeCode, maskTourist bool) []oneTimeCodeResponse {
	out := make([]oneTimeCodeResponse, 0, len(codes))
	for _, o := range codes {
		tourist := o.TouristCode
		if maskTourist {
			tourist = model.MaskCode(tourist)
		}
		r := oneTimeCodeResponse{
			Code:               o.Code,
			TouristCode:        tourist,
			IsUsed:             o.IsUsed,
			PartnerCode:        o.PartnerCode,
			PartnerName:        o.PartnerName,
			OriginalAmount:     moneyPtr(o.OriginalAmount),
			DiscountPercentage: moneyPtr(o.DiscountPercentage),
			DiscountAmount:     moneyPtr(o.DiscountAmount),
			OfferDescription:   o.OfferDescription,
			CreatedAt:          o.CreatedAt.Format(time.RFC3339),
		}
		if o.UsedAt != nil {
			used := o.UsedAt.Format(time.RFC3339)
			r.UsedAt = &used
		}
		out = append(out, r)
	}
	return out
}
