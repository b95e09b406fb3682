package httpx

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"

	"github.com/Pankaj72885/care.xyz/internal/notification/events"
)

type publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// eventRetriever wraps the gateway call so tests can fake it.
type eventRetriever interface {
	RetrieveEvent(ctx context.Context, eventID string) (*omise.Event, error)
}

type OmiseRetriever struct{ Client *omise.Client }

func (r *OmiseRetriever) RetrieveEvent(_ context.Context, eventID string) (*omise.Event, error) {
	ev := &omise.Event{}
	if err := r.Client.Do(ev, &operations.RetrieveEvent{EventID: eventID}); err != nil {
		return nil, err
	}
	return ev, nil
}

// WebhookServer receives Omise callbacks. The incoming body is never
// trusted: the event is re-retrieved from the gateway by id, which is the
// Omise equivalent of webhook signature verification.
type WebhookServer struct {
	retriever eventRetriever
	pub       publisher
}

func NewWebhookServer(retriever eventRetriever, pub publisher) *WebhookServer {
	return &WebhookServer{retriever: retriever, pub: pub}
}

type incomingEvent struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

func (s *WebhookServer) Handler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var inc incomingEvent
	if err := json.NewDecoder(r.Body).Decode(&inc); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	ev, err := s.retriever.RetrieveEvent(r.Context(), inc.ID)
	if err != nil {
		log.Printf("[webhook] retrieve event error: %v", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch ev.Key {
	case "charge.complete":
		raw, err := json.Marshal(ev.Data)
		if err != nil {
			log.Printf("[webhook] marshal event data error: %v", err)
			w.WriteHeader(http.StatusOK)
			return
		}
		var ch omise.Charge
		if err := json.Unmarshal(raw, &ch); err != nil {
			log.Printf("[webhook] unmarshal charge error: %v", err)
			w.WriteHeader(http.StatusOK)
			return
		}

		bookingID, _ := ch.Metadata["booking_id"].(string)
		if bookingID == "" {
			log.Printf("[webhook] charge %s has no booking metadata", ch.ID)
			w.WriteHeader(http.StatusOK)
			return
		}

		if ch.Status == "successful" {
			_ = s.pub.PublishJSON(r.Context(), events.RKPaymentPaid, events.PaymentPaid{
				BookingID: bookingID,
				ChargeID:  ch.ID,
				Amount:    ch.Amount,
				Currency:  ch.Currency,
			})
		} else {
			var reason string
			if ch.FailureCode != nil {
				reason = *ch.FailureCode
			}
			_ = s.pub.PublishJSON(r.Context(), events.RKPaymentFailed, events.PaymentFailed{
				BookingID:   bookingID,
				ChargeID:    ch.ID,
				FailureCode: reason,
			})
		}
	default:
		// other event keys are not ours to handle
	}

	w.WriteHeader(http.StatusOK)
}
