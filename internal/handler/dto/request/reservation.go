package request

// GuardianPayload identifies the booking guardian. Email is the upsert key;
// when absent the reservation is created against a generated guest identity.
type GuardianPayload struct {
	Name      string  `json:"name" binding:"required"`
	Email     string  `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	DocNumber *string `json:"docNumber"`
}

type ChildPayload struct {
	FullName      string  `json:"fullName" binding:"required"`
	AgeYears      int     `json:"ageYears" binding:"gte=0,lte=17"`
	DNI           *string `json:"dni"`
	HasConditions bool    `json:"hasConditions"`
	Conditions    *string `json:"conditions"`
	Hours         int     `json:"hours" binding:"required,gte=1,lte=12"`
}

type CreateReservationRequest struct {
	Guardian GuardianPayload `json:"guardian" binding:"required"`
	Date     string          `json:"date" binding:"required"`
	Hour     int             `json:"hour" binding:"gte=0,lte=23"`
	Children []ChildPayload  `json:"children" binding:"omitempty,dive"`
}

type UpdateChildrenRequest struct {
	Children []ChildPayload `json:"children" binding:"required,min=1,dive"`
}
