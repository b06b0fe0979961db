package api

type (
	// Class is a teacher's class as returned by the backend
	Class struct {
		ID        EntityID   `json:"id"`
		Name      string     `json:"class_name"`
		YearLevel string     `json:"year_level,omitempty"`
		Subject   string     `json:"subject,omitempty"`
		Students  []*Student `json:"students,omitempty"`
	}

	// Student is a student record
	Student struct {
		ID             EntityID `json:"id"`
		FirstName      string   `json:"first_name"`
		LastName       string   `json:"last_name"`
		StudentEmail   string   `json:"student_email,omitempty"`
		YearLevel      string   `json:"year_level,omitempty"`
		DisabilityInfo string   `json:"disability_info,omitempty"`
	}

	// NCCDReport is a Nationally Consistent Collection of Data report on
	// the adjustments provided to a student
	NCCDReport struct {
		ID                 EntityID `json:"id"`
		Student            EntityID `json:"student"`
		HasEvidence        bool     `json:"has_evidence"`
		EvidenceURL        string   `json:"evidence_url,omitempty"`
		LevelOfAdjustment  string   `json:"level_of_adjustment"`
		DisabilityCategory string   `json:"disability_category"`
		UnderDDA           bool     `json:"under_dda"`
		AdditionalComments string   `json:"additional_comments,omitempty"`
		Status             string   `json:"status,omitempty"`
	}

	// LoginResult is the backend answer to a successful login
	LoginResult struct {
		Access    string `json:"access"`
		Refresh   string `json:"refresh"`
		FirstName string `json:"first_name,omitempty"`
		Email     string `json:"email,omitempty"`
		SessionID string `json:"session_id,omitempty"`
	}

	// Profile is the signed-in teacher's account profile
	Profile struct {
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		Email      string `json:"email"`
		Phone      string `json:"phone_number,omitempty"`
		School     string `json:"school,omitempty"`
		Theme      string `json:"theme,omitempty"`
		TwoFactor  bool   `json:"two_factor_enabled,omitempty"`
		ProfilePic string `json:"profile_pic,omitempty"`
	}

	// AccountSession is an active login session of the signed-in teacher
	AccountSession struct {
		ID         string `json:"id"`
		Device     string `json:"device,omitempty"`
		IPAddress  string `json:"ip_address,omitempty"`
		LastActive string `json:"last_active,omitempty"`
		Current    bool   `json:"is_current,omitempty"`
	}
)

// NCCD report field values accepted by the backend
const (
	AdjustmentQDTP          = "QDTP"
	AdjustmentSupplementary = "Supplementary"
	AdjustmentSubstantial   = "Substantial"
	AdjustmentExtensive     = "Extensive"

	CategoryCognitive = "Cognitive"
	CategoryPhysical  = "Physical"
	CategorySocial    = "Social/Emotional"
	CategorySensory   = "Sensory"

	ReportApproved = "Approved"
)
