package game

// EventType is an enum-like type for events broadcast to clients.
type EventType string

const (
	EventUpdate         EventType = "update"
	EventRoomJoined     EventType = "room_joined"
	EventErrorMessage   EventType = "error_message"
	EventActionDenied   EventType = "action_denied"
	EventInfo           EventType = "info"
	EventReadyState     EventType = "ready_state"
	EventCountdownStart EventType = "countdown_started"
	EventCountdownStop  EventType = "countdown_cancelled"
	EventDiceRolling    EventType = "dice_rolling"
	EventDiceResults    EventType = "dice_results"
	EventGameStarted    EventType = "game_started"
	EventPlayerTargeted EventType = "player_targeted"
	EventTurnChanged    EventType = "turn_changed"
	EventYouWin         EventType = "you_win"
	EventYouLose        EventType = "you_lose"
	EventRoomList       EventType = "room_list"
)

// Event is one outbound message. Payload keys are event-specific; the
// transport marshals the whole struct as JSON.
type Event struct {
	Type    EventType              `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// infoEvent builds the advisory message event used for reshuffles,
// reflections, skips, falls, and connection notices.
func infoEvent(message string) Event {
	return Event{Type: EventInfo, Payload: map[string]interface{}{"message": message}}
}
