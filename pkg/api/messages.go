package api

type (
	// ErrorResponse is returned by the wizard service on failure
	ErrorResponse struct {
		Error  string       `json:"error"`
		Status int          `json:"status"`
		Record *ErrorRecord `json:"record,omitempty"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service string `json:"service"`
		Version string `json:"version"`
		Status  string `json:"status"`
		Flows   int    `json:"flows"`
	}

	// StartClassRequest starts a class setup wizard. Passing the FlowID of
	// an unfinished setup resumes it with the class it already created
	StartClassRequest struct {
		FlowID FlowID `json:"flow_id,omitempty"`
	}

	// StartNCCDRequest starts an NCCD report wizard. A preset StudentID
	// removes the student selection step; a ReportID edits an existing
	// report
	StartNCCDRequest struct {
		StudentID EntityID `json:"student_id,omitempty"`
		ReportID  EntityID `json:"report_id,omitempty"`
	}

	// SetValuesRequest records form values on a wizard step
	SetValuesRequest struct {
		Values map[string]any `json:"values"`
	}

	// SubscribeRequest is sent by websocket clients to select the flow
	// whose events they receive
	SubscribeRequest struct {
		Type   string `json:"type"`
		FlowID FlowID `json:"flow_id"`
	}

	// SubscribedResult answers a subscription with the flow's current
	// state
	SubscribedResult struct {
		Type   string `json:"type"`
		FlowID FlowID `json:"flow_id"`
		Data   any    `json:"data"`
	}

	// SessionMessage is exchanged on the backend session websocket
	SessionMessage struct {
		Type    string `json:"type"`
		Token   string `json:"token,omitempty"`
		Message string `json:"message,omitempty"`
	}
)

const (
	MessageSubscribe         = "subscribe"
	MessageSubscribed        = "subscribed"
	MessageAuthenticate      = "authenticate"
	MessageSessionTerminated = "session_terminated"
)
