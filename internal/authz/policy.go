package authz

// Relation describes how a principal stands to the target entity. A
// reservation deliberately has two distinct controlling relations, the
// requesting consumer and the servicing pharmacy's owner; they are never
// collapsed into a single "owner" boolean because the rules differ per
// relation.
type Relation string

const (
	RelationNone              Relation = "none"
	RelationOwner             Relation = "owner"
	RelationRequester         Relation = "requester"
	RelationServicingPharmacy Relation = "servicing_pharmacy_owner"
)

// Resource is the kind of entity an action targets.
type Resource string

const (
	ResourcePharmacy    Resource = "pharmacies"
	ResourceMedicine    Resource = "medicines"
	ResourceReservation Resource = "reservations"
)

// Action is the operation being attempted. Reservation status changes are
// modeled as distinct confirm/cancel actions so the rule table can gate
// them per target status.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionVerify  Action = "verify"
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
)

// Allowed is the authorization policy: a pure function over (role,
// relation, resource, action) with no side effects. Anything not matched
// by an explicit rule is denied.
func Allowed(role Role, rel Relation, res Resource, action Action) bool {
	// Admins may perform any action on any resource.
	if role == RoleAdmin {
		return true
	}

	switch res {
	case ResourcePharmacy:
		switch action {
		case ActionCreate:
			// One pharmacy per user is a workflow precondition, not a
			// policy concern.
			return role == RolePharmacy
		case ActionUpdate, ActionDelete, ActionVerify:
			return role == RolePharmacy && rel == RelationOwner
		}

	case ResourceMedicine:
		switch action {
		case ActionCreate, ActionUpdate, ActionDelete:
			// Ownership is resolved transitively through the medicine's
			// pharmacy before this is consulted.
			return role == RolePharmacy && rel == RelationOwner
		}

	case ResourceReservation:
		switch action {
		case ActionCreate:
			return role == RoleConsumer
		case ActionConfirm:
			// Only the servicing pharmacy may confirm.
			return role == RolePharmacy && rel == RelationServicingPharmacy
		case ActionCancel:
			if role == RoleConsumer {
				return rel == RelationRequester
			}
			return role == RolePharmacy && rel == RelationServicingPharmacy
		case ActionDelete:
			if role == RoleConsumer {
				return rel == RelationRequester
			}
			return role == RolePharmacy && rel == RelationServicingPharmacy
		}
	}

	return false
}
