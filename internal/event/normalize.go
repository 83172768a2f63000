package event

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/wishly-app/wishly/internal/api"
)

// Normalize decodes one raw channel message into a typed Event. It returns
// false for anything that is not a well-formed message of a known kind:
// unparseable text, an unknown discriminant, or a known kind missing a
// required field. The channel legitimately carries unrelated traffic, so
// none of that is an error.
func Normalize(raw []byte) (Event, bool) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false
	}

	kind, _ := payload["type"].(string)
	switch Type(kind) {
	case TypeItemReserved:
		giftID, ok := intField(payload, "gift_id", "giftId")
		if !ok {
			return nil, false
		}
		return ItemReserved{GiftID: giftID, Reserver: actorField(payload)}, true

	case TypeContributionAdded:
		giftID, ok := intField(payload, "gift_id", "giftId")
		if !ok {
			return nil, false
		}
		amount, ok := numField(payload, "amount")
		if !ok {
			return nil, false
		}
		total, ok := numField(payload, "total")
		if !ok {
			return nil, false
		}
		return ContributionAdded{
			GiftID:      giftID,
			Amount:      amount,
			Total:       total,
			Contributor: actorField(payload),
		}, true

	case TypeGiftAdded:
		giftPayload, ok := payload["gift"].(map[string]any)
		if !ok {
			return nil, false
		}
		giftID, ok := intField(payload, "gift_id", "giftId")
		if !ok {
			// Fall back to the id embedded in the gift payload.
			if giftID, ok = intField(giftPayload, "id"); !ok {
				return nil, false
			}
		}
		return GiftAdded{GiftID: giftID, Gift: decodeGift(giftID, giftPayload)}, true

	case TypeStatsUpdated:
		return StatsUpdated{}, true
	}

	return nil, false
}

// decodeGift builds a Gift from an embedded payload, defaulting absent or
// malformed optional fields rather than dropping the event.
func decodeGift(id int64, payload map[string]any) api.Gift {
	gift := api.Gift{ID: id}
	gift.Title, _ = payload["title"].(string)
	gift.Price, _ = numField(payload, "price")
	gift.Collected, _ = numField(payload, "collected")
	if progress, ok := numField(payload, "progress"); ok {
		gift.Progress = int(progress)
	}
	gift.IsReserved, _ = payload["is_reserved"].(bool)
	gift.URL, _ = payload["url"].(string)
	gift.ImageURL, _ = payload["image_url"].(string)
	return gift
}

// actorField extracts the optional user identity attached to reservation and
// contribution events. Both id and name must be present; otherwise the event
// simply carries no actor.
func actorField(payload map[string]any) *Actor {
	userID, ok := intField(payload, "user_id", "userId")
	if !ok {
		return nil
	}
	name, ok := stringField(payload, "user_name", "userName")
	if !ok || name == "" {
		return nil
	}
	return &Actor{UserID: userID, Name: name}
}

// numField reads the first present key as a number, coercing numeric
// strings the way the original channel consumers did.
func numField(payload map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		value, present := payload[key]
		if !present || value == nil {
			continue
		}
		switch v := value.(type) {
		case float64:
			return v, true
		case string:
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return 0, false
			}
			return parsed, true
		default:
			return 0, false
		}
	}
	return 0, false
}

func intField(payload map[string]any, keys ...string) (int64, bool) {
	value, ok := numField(payload, keys...)
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return int64(value), true
}

func stringField(payload map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if value, present := payload[key]; present {
			s, ok := value.(string)
			return s, ok
		}
	}
	return "", false
}
