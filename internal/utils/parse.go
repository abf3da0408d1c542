package utils

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// DecodeJSON unmarshals data into a value of type T. When repair is true and
// the first attempt fails, the payload is passed through jsonrepair (which
// fixes single quotes, trailing commas, unquoted keys, truncated objects, ...)
// and decoded again.
//
// The returned error never embeds data itself; callers decide how much of the
// payload to show.
//
// Example:
//
//	resp, err := utils.DecodeJSON[ai.ChatResponse](body, false)
//
//	// {model: 'x', choices: [],} is accepted in repair mode
//	resp, err := utils.DecodeJSON[ai.ChatResponse](body, true)
func DecodeJSON[T any](data []byte, repair bool) (T, error) {
	var result T

	err := json.Unmarshal(data, &result)
	if err == nil || !repair {
		return result, err
	}

	repaired, repairErr := jsonrepair.JSONRepair(string(data))
	if repairErr != nil {
		return result, fmt.Errorf("%w (repair failed: %v)", err, repairErr)
	}

	var second T
	if err := json.Unmarshal([]byte(repaired), &second); err != nil {
		return result, fmt.Errorf("failed to unmarshal repaired JSON: %w", err)
	}
	return second, nil
}
