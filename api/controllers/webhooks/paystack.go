package webhooks

import (
	"io"
	"net/http"

	"github.com/kofiasare/sewshop-backend/api/responses"
	"github.com/kofiasare/sewshop-backend/internal/payments"
	pkgerrors "github.com/kofiasare/sewshop-backend/pkg/errors"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
	"github.com/kofiasare/sewshop-backend/pkg/paystack"
)

// Paystack receives signed gateway events. This is the authoritative
// settlement path; the redirect callback is only a convenience for the
// storefront. Always acknowledge with 200 once the event is processed so the
// gateway stops retrying.
func Paystack(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read webhook body"))
			return
		}

		signature := r.Header.Get(paystack.SignatureHeader())
		if err := svc.HandleWebhook(r.Context(), body, signature); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
