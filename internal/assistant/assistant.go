package assistant

import (
	"context"
	"errors"

	"github.com/benmeehan/zima/internal/dispatch"
	"github.com/benmeehan/zima/internal/llm"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/users"
	"github.com/rs/zerolog"
)

// TargetSelector picks the hardware node a detected call runs on.
type TargetSelector interface {
	Target(caller string) (string, bool)
}

// FunctionExecutor runs a detected call on a hardware node.
type FunctionExecutor interface {
	Execute(ctx context.Context, function string, args map[string]any, target string) (map[string]any, error)
}

// ProfileLoader reads user profiles.
type ProfileLoader interface {
	Load(id string) (models.UserProfile, error)
}

// Assistant turns a chat message into a reply: it detects hardware functions in the
// user's request, runs them on a hardware node and asks the model to answer with
// the results in view.
type Assistant struct {
	Profiles  ProfileLoader
	Targets   TargetSelector
	Executor  FunctionExecutor
	Generator llm.Generator
	Logger    zerolog.Logger
}

// Reply is the outcome of a chat turn.
type Reply struct {
	Text    string
	Target  string
	Results []models.FunctionResult
}

// Chat answers message for userID on behalf of caller, wrapping it with the user's profile.
func (a *Assistant) Chat(ctx context.Context, caller, userID, message string) Reply {
	var profile *models.UserProfile
	if p, err := a.Profiles.Load(userID); err == nil {
		profile = &p
	} else if !errors.Is(err, users.ErrUserNotFound) {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("Error loading user for chat context")
	}

	prompt := llm.ChatPrompt(llm.UserContext(profile), message)
	return a.Respond(ctx, caller, prompt)
}

// Respond generates a reply for prompt. Function detection only looks at the user's
// request inside the prompt, never at the profile context around it.
func (a *Assistant) Respond(ctx context.Context, caller, prompt string) Reply {
	request := llm.ExtractUserRequest(prompt)
	calls := dispatch.Detect(request)

	target, ok := a.Targets.Target(caller)
	if !ok {
		a.Logger.Warn().Msg("No registered clients available for function calling")
	}

	reply := Reply{Target: target}
	if ok && len(calls) > 0 {
		a.Logger.Info().Int("calls", len(calls)).Str("target", target).Msg("Executing function calls")
		for _, call := range calls {
			result, err := a.Executor.Execute(ctx, call.Function, call.Args, target)
			if err != nil {
				a.Logger.Warn().Err(err).Str("function", call.Function).Msg("Function call failed")
			}
			reply.Results = append(reply.Results, models.FunctionResult{
				Function: call.Function,
				Args:     call.Args,
				Result:   result,
			})
		}
	}

	text, err := a.Generator.Generate(ctx, llm.AppendResults(prompt, reply.Results), llm.SystemPrompt)
	switch {
	case err == nil:
		reply.Text = text
	case llm.IsUpstreamStatus(err):
		a.Logger.Error().Err(err).Msg("Ollama API error")
		reply.Text = llm.ReplyUpstreamError
	default:
		a.Logger.Error().Err(err).Msg("Error generating response")
		reply.Text = llm.ReplyInternalError
	}
	return reply
}
