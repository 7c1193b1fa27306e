package cart

// Status represents the lifecycle status of an item request
type Status string

const (
	StatusPending          Status = "pending"
	StatusClaimed          Status = "claimed"
	StatusContractCreated  Status = "contract_created"
	StatusContractAccepted Status = "contract_accepted"
	StatusCompleted        Status = "completed"
	StatusCancelled        Status = "cancelled"
	StatusExpired          Status = "expired"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []Status{
	StatusPending,
	StatusClaimed,
	StatusContractCreated,
	StatusContractAccepted,
	StatusCompleted,
	StatusCancelled,
	StatusExpired,
}

// OpenStatuses are the statuses a request can still be cancelled or expired from
var OpenStatuses = []Status{StatusPending, StatusClaimed, StatusContractCreated}

// FinishedStatuses are terminal statuses
var FinishedStatuses = []Status{StatusCompleted, StatusCancelled, StatusExpired}

// ClaimedStatuses are the statuses shown in a fulfiller's claimed list
var ClaimedStatuses = []Status{StatusClaimed, StatusContractCreated, StatusContractAccepted}

var statusLabels = map[Status]string{
	StatusPending:          "Pending",
	StatusClaimed:          "Claimed",
	StatusContractCreated:  "Contract Created",
	StatusContractAccepted: "Contract Accepted",
	StatusCompleted:        "Completed",
	StatusCancelled:        "Cancelled",
	StatusExpired:          "Expired",
}

var statusColors = map[Status]string{
	StatusPending:          "warning",
	StatusClaimed:          "info",
	StatusContractCreated:  "primary",
	StatusContractAccepted: "success",
	StatusCompleted:        "success",
	StatusCancelled:        "danger",
	StatusExpired:          "default",
}

var statusIcons = map[Status]string{
	StatusPending:          "fa-clock",
	StatusClaimed:          "fa-hand-rock",
	StatusContractCreated:  "fa-file-contract",
	StatusContractAccepted: "fa-handshake",
	StatusCompleted:        "fa-check-double",
	StatusCancelled:        "fa-times",
	StatusExpired:          "fa-hourglass-end",
}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Label returns the human readable status name
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// BadgeClass returns the bootstrap badge suffix used to render the status
func (s Status) BadgeClass() string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return "default"
}

// Icon returns the font-awesome icon for the status
func (s Status) Icon() string {
	if i, ok := statusIcons[s]; ok {
		return i
	}
	return "fa-question"
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusExpired
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusClaimed || target == StatusCancelled || target == StatusExpired
	case StatusClaimed:
		return target == StatusContractCreated || target == StatusCancelled || target == StatusExpired
	case StatusContractCreated:
		return target == StatusContractAccepted || target == StatusCancelled || target == StatusExpired
	case StatusContractAccepted:
		return target == StatusCompleted
	case StatusCompleted, StatusCancelled, StatusExpired:
		return false // Terminal states
	}
	return false
}

// RequestType describes who sources the items
type RequestType string

const (
	// RequestTypeRequesterHasItems: the requester already owns the items
	RequestTypeRequesterHasItems RequestType = "requester_has_items"
	// RequestTypeFulfillerBuys: the fulfiller buys the items on the requester's behalf
	RequestTypeFulfillerBuys RequestType = "fulfiller_buys"
)

// IsValid checks if the request type is known
func (t RequestType) IsValid() bool {
	return t == RequestTypeRequesterHasItems || t == RequestTypeFulfillerBuys
}

// String returns the string representation of RequestType
func (t RequestType) String() string {
	return string(t)
}

// Label returns the choice label shown to players
func (t RequestType) Label() string {
	switch t {
	case RequestTypeRequesterHasItems:
		return "I have the items"
	case RequestTypeFulfillerBuys:
		return "Please buy items for me"
	}
	return string(t)
}

// ContractIssuer identifies which party issued the in-game contract
type ContractIssuer string

const (
	ContractIssuerRequester ContractIssuer = "requester"
	ContractIssuerFulfiller ContractIssuer = "fulfiller"
)

// IsValid checks if the issuer is known
func (i ContractIssuer) IsValid() bool {
	return i == ContractIssuerRequester || i == ContractIssuerFulfiller
}

// String returns the string representation of ContractIssuer
func (i ContractIssuer) String() string {
	return string(i)
}

// StatusStrings converts statuses to their string values
func StatusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
