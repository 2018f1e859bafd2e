// Package models defines the core data structures for JourneyMap.
//
// It includes the context-variable enumerations, the journey data shape
// returned by the LLM providers, and the API response envelope shared
// across modules.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Provider identifies one of the supported LLM backends.
type Provider string

const (
	// ProviderGemini uses the Google Gemini API with native structured output.
	ProviderGemini Provider = "gemini"
	// ProviderChatGPT uses the OpenAI chat completions API.
	ProviderChatGPT Provider = "chatgpt"
	// ProviderDeepSeek uses the DeepSeek OpenAI-compatible chat completions API.
	ProviderDeepSeek Provider = "deepseek"
)

// IsValidProvider checks if the given provider is supported.
func IsValidProvider(p Provider) bool {
	switch p {
	case ProviderGemini, ProviderChatGPT, ProviderDeepSeek:
		return true
	default:
		return false
	}
}

// Context variable axes. Each axis holds exactly one value at all times.
const (
	AxisLocation = "location"
	AxisSocial   = "social"
	AxisTime     = "time"
	AxisMood     = "mood"
)

// LocationContext describes where the journey takes place.
type LocationContext string

const (
	LocationBedroom  LocationContext = "bedroom"
	LocationBathroom LocationContext = "bathroom"
	LocationTravel   LocationContext = "travel"
	LocationPublic   LocationContext = "public"
)

// Label returns the display label interpolated into instruction text.
func (l LocationContext) Label() string {
	switch l {
	case LocationBedroom:
		return "卧室"
	case LocationBathroom:
		return "浴室/淋浴间"
	case LocationTravel:
		return "旅行/酒店"
	case LocationPublic:
		return "公共场所/远程"
	default:
		return string(l)
	}
}

// SocialContext describes the social setting of the journey.
type SocialContext string

const (
	SocialSolo         SocialContext = "solo"
	SocialPartnered    SocialContext = "partnered"
	SocialLongDistance SocialContext = "long_distance"
)

// Label returns the display label interpolated into instruction text.
func (s SocialContext) Label() string {
	switch s {
	case SocialSolo:
		return "独处自娱"
	case SocialPartnered:
		return "伴侣互动"
	case SocialLongDistance:
		return "异地远程"
	default:
		return string(s)
	}
}

// TimeContext describes when the journey takes place.
type TimeContext string

const (
	TimeMorning   TimeContext = "morning"
	TimeEvening   TimeContext = "evening"
	TimeLateNight TimeContext = "late_night"
	TimeWeekend   TimeContext = "weekend"
)

// Label returns the display label interpolated into instruction text.
func (t TimeContext) Label() string {
	switch t {
	case TimeMorning:
		return "早晨匆忙"
	case TimeEvening:
		return "晚间放松"
	case TimeLateNight:
		return "深夜"
	case TimeWeekend:
		return "周末闲暇"
	default:
		return string(t)
	}
}

// MoodContext describes the mood biasing the journey narrative.
type MoodContext string

const (
	MoodAdventurous MoodContext = "adventurous"
	MoodRelaxing    MoodContext = "relaxing"
	MoodIntense     MoodContext = "intense"
	MoodPlayful     MoodContext = "playful"
)

// Label returns the display label interpolated into instruction text.
func (m MoodContext) Label() string {
	switch m {
	case MoodAdventurous:
		return "探索/冒险"
	case MoodRelaxing:
		return "放松/治愈"
	case MoodIntense:
		return "激情/强烈"
	case MoodPlayful:
		return "趣味/调皮"
	default:
		return string(m)
	}
}

// Error variables for better error handling and testability
var (
	ErrEmptyPrompt       = errors.New("prompt cannot be empty")
	ErrMissingAPIKey     = errors.New("api key is not set for the selected provider")
	ErrInvalidProvider   = errors.New("invalid provider")
	ErrInvalidAxis       = errors.New("invalid context variable axis")
	ErrInvalidVariable   = errors.New("invalid context variable value")
	ErrNoJourney         = errors.New("no journey has been generated")
	ErrStageIndex        = errors.New("stage index out of range")
	ErrInvalidStageField = errors.New("invalid stage field")
	ErrLastStage         = errors.New("a journey must keep at least one stage")
)

// User-facing messages surfaced by the lifecycle controller. The product
// UI is Chinese-facing, matching the language the journeys are generated in.
const (
	// MsgPromptRequired is reported when submit is called with an empty prompt.
	MsgPromptRequired = "请描述目标用户画像和主要故事线。"
	// MsgCancelled is reported when a generation is cancelled or superseded.
	MsgCancelled = "分析已取消。"
)

// MsgNeedAPIKey formats the missing-key message for the given provider.
func MsgNeedAPIKey(p Provider) string {
	return fmt.Sprintf("请提供 %s 的 API 密钥。", p)
}

// ContextVariables holds exactly one value per context axis.
type ContextVariables struct {
	Location LocationContext `json:"location"`
	Social   SocialContext   `json:"social"`
	Time     TimeContext     `json:"time"`
	Mood     MoodContext     `json:"mood"`
}

// DefaultVariables returns the initial context variable selection.
func DefaultVariables() ContextVariables {
	return ContextVariables{
		Location: LocationBedroom,
		Social:   SocialSolo,
		Time:     TimeEvening,
		Mood:     MoodRelaxing,
	}
}

// Set assigns the value on the named axis after validating both.
func (v *ContextVariables) Set(axis, value string) error {
	value = strings.TrimSpace(value)
	switch axis {
	case AxisLocation:
		l := LocationContext(value)
		switch l {
		case LocationBedroom, LocationBathroom, LocationTravel, LocationPublic:
			v.Location = l
			return nil
		}
	case AxisSocial:
		s := SocialContext(value)
		switch s {
		case SocialSolo, SocialPartnered, SocialLongDistance:
			v.Social = s
			return nil
		}
	case AxisTime:
		t := TimeContext(value)
		switch t {
		case TimeMorning, TimeEvening, TimeLateNight, TimeWeekend:
			v.Time = t
			return nil
		}
	case AxisMood:
		m := MoodContext(value)
		switch m {
		case MoodAdventurous, MoodRelaxing, MoodIntense, MoodPlayful:
			v.Mood = m
			return nil
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidAxis, axis)
	}
	return fmt.Errorf("%w: %s=%s", ErrInvalidVariable, axis, value)
}

// JourneyStage is one chronological step of the generated narrative.
//
// The userAction, painPoints, designOpportunities and technicalSupport
// fields conventionally hold numbered-list text with the most salient
// phrase wrapped in **emphasis markers**. The convention is a rendering
// contract with the provider, not a validated structure: user edits may
// violate it and the system tolerates that.
type JourneyStage struct {
	StageName           string `json:"stageName"`
	Goal                string `json:"goal"`
	UserAction          string `json:"userAction"`
	Touchpoints         string `json:"touchpoints"`
	Thinking            string `json:"thinking"`
	Feeling             string `json:"feeling"`
	PainPoints          string `json:"painPoints"`
	DesignOpportunities string `json:"designOpportunities"`
	TechnicalSupport    string `json:"technicalSupport"`
	EmotionScore        int    `json:"emotionScore"`
}

// Stage field names accepted by field-level edits. These match the JSON
// wire names used by the view layer.
const (
	StageFieldName                = "stageName"
	StageFieldGoal                = "goal"
	StageFieldUserAction          = "userAction"
	StageFieldTouchpoints         = "touchpoints"
	StageFieldThinking            = "thinking"
	StageFieldFeeling             = "feeling"
	StageFieldPainPoints          = "painPoints"
	StageFieldDesignOpportunities = "designOpportunities"
	StageFieldTechnicalSupport    = "technicalSupport"
)

// SetField assigns the named free-text field. EmotionScore is not editable
// through field-level edits; it only changes with a full regeneration.
func (s *JourneyStage) SetField(field, value string) error {
	switch field {
	case StageFieldName:
		s.StageName = value
	case StageFieldGoal:
		s.Goal = value
	case StageFieldUserAction:
		s.UserAction = value
	case StageFieldTouchpoints:
		s.Touchpoints = value
	case StageFieldThinking:
		s.Thinking = value
	case StageFieldFeeling:
		s.Feeling = value
	case StageFieldPainPoints:
		s.PainPoints = value
	case StageFieldDesignOpportunities:
		s.DesignOpportunities = value
	case StageFieldTechnicalSupport:
		s.TechnicalSupport = value
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStageField, field)
	}
	return nil
}

// NewPlaceholderStage returns the stage appended by the add-stage operation.
func NewPlaceholderStage() JourneyStage {
	return JourneyStage{
		StageName:           "新阶段",
		Goal:                "请输入目标",
		UserAction:          "1. 请输入用户行为",
		Touchpoints:         "接触点",
		Thinking:            "想法",
		Feeling:             "情绪",
		PainPoints:          "1. 痛点一",
		DesignOpportunities: "1. 机会点一",
		TechnicalSupport:    "1. 技术支撑点一",
		EmotionScore:        5,
	}
}

// JourneyData is the top-level generation result. Stage order is narrative
// chronology; index matters.
type JourneyData struct {
	Title       string         `json:"title"`
	Summary     string         `json:"summary"`
	PersonaName string         `json:"personaName"`
	Stages      []JourneyStage `json:"stages"`
	IsFallback  bool           `json:"isFallback,omitempty"`
}

// Clone returns a deep copy with a freshly allocated stage slice, so that
// edits on the copy never alias the original.
func (j *JourneyData) Clone() *JourneyData {
	if j == nil {
		return nil
	}
	out := *j
	out.Stages = make([]JourneyStage, len(j.Stages))
	copy(out.Stages, j.Stages)
	return &out
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
