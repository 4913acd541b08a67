package dto

import "github.com/google/uuid"

type VideoOptions struct {
	RoomName            string   `json:"room_name"`
	DisplayName         string   `json:"display_name"`
	Email               string   `json:"email,omitempty"`
	StartWithAudioMuted bool     `json:"start_with_audio_muted"`
	StartWithVideoMuted bool     `json:"start_with_video_muted"`
	ToolbarButtons      []string `json:"toolbar_buttons"`
}

type VideoCommands struct {
	ToggleAudio       string `json:"toggle_audio"`
	ToggleVideo       string `json:"toggle_video"`
	Hangup            string `json:"hangup"`
	ToggleShareScreen string `json:"toggle_share_screen"`
}

type VideoEvents struct {
	Joined       string `json:"joined"`
	ReadyToClose string `json:"ready_to_close"`
}

type VideoSessionResponse struct {
	SessionID     uuid.UUID     `json:"session_id"`
	AppointmentID uuid.UUID     `json:"appointment_id"`
	Provider      string        `json:"provider"`
	Domain        string        `json:"domain"`
	ScriptURL     string        `json:"script_url"`
	Options       VideoOptions  `json:"options"`
	Commands      VideoCommands `json:"commands"`
	Events        VideoEvents   `json:"events"`
}
