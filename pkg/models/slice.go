package models

import (
	"encoding/json"
	"fmt"
)

// Document is one slice file produced by the object-usage slicer.
type Document struct {
	ObjectSlices     map[string][]ObjectSlice `json:"objectSlices"`
	UserDefinedTypes []json.RawMessage        `json:"userDefinedTypes"`
}

// ObjectSlice describes how a single object is used inside one scope.
type ObjectSlice struct {
	TargetObj    TargetObj       `json:"targetObj"`
	DefinedBy    json.RawMessage `json:"definedBy,omitempty"`
	InvokedCalls []Call          `json:"invokedCalls"`
	ArgToCalls   []ArgCall       `json:"argToCalls"`
}

// Evidence returns the number of raw observations recorded for the object.
func (o ObjectSlice) Evidence() int {
	return len(o.InvokedCalls) + len(o.ArgToCalls)
}

// TargetObj identifies the tracked object.
type TargetObj struct {
	Name         string `json:"name"`
	TypeFullName string `json:"typeFullName"`
	Literal      bool   `json:"literal"`
}

// Call is a single invocation observed by the slicer.
type Call struct {
	Receiver   *string           `json:"receiver,omitempty"`
	CallName   string            `json:"callName"`
	ParamTypes []json.RawMessage `json:"paramTypes"`
	ReturnType string            `json:"returnType,omitempty"`
}

// ArgCall is a call that received the tracked object as an argument,
// together with the argument position. On the wire it is a two-element
// array: [call, orderIndex].
type ArgCall struct {
	Call  Call
	Order int
}

// UnmarshalJSON decodes the [call, orderIndex] tuple form.
func (a *ArgCall) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("argument call: %w", err)
	}
	if len(tuple) != 2 {
		return fmt.Errorf("argument call: expected [call, index], got %d elements", len(tuple))
	}
	if err := json.Unmarshal(tuple[0], &a.Call); err != nil {
		return fmt.Errorf("argument call: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &a.Order); err != nil {
		return fmt.Errorf("argument call index: %w", err)
	}
	return nil
}

// MarshalJSON encodes the call back into its tuple form.
func (a ArgCall) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{a.Call, a.Order})
}

// UsageRecord is one object observed in one scope that survived import filtering.
// Records are built once by the importer and are not mutated afterwards.
type UsageRecord struct {
	Name         string    `json:"name"`
	Scope        string    `json:"scope"`
	TypeName     string    `json:"type_name"`
	InvokedCalls []Call    `json:"invoked_calls"`
	ArgToCalls   []ArgCall `json:"arg_to_calls"`
}

// Evidence returns the number of raw observations attached to the record.
func (r UsageRecord) Evidence() int {
	return len(r.InvokedCalls) + len(r.ArgToCalls)
}
