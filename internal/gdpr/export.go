package gdpr

import (
	"time"

	"jassari/internal/membership"
)

// Node is one element of the machine-readable export tree: either a leaf with
// a value or a branch with children.
type Node struct {
	Key      string `json:"key"`
	Value    any    `json:"value,omitempty"`
	Children []Node `json:"children,omitempty"`
}

const dateLayout = "2006-01-02"

func leaf(key string, value any) Node {
	return Node{Key: key, Value: value}
}

func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

// toExport renders a profile as the export tree. Tokens never leave the
// service, not even in a subject access export.
func toExport(p membership.Profile) Node {
	root := Node{
		Key: "YOUTHPROFILE",
		Children: []Node{
			leaf("ID", p.ID.String()),
			leaf("MEMBERSHIP_NUMBER", p.MembershipNumber),
			leaf("BIRTH_DATE", p.BirthDate.Format(dateLayout)),
			leaf("SCHOOL_NAME", p.SchoolName),
			leaf("SCHOOL_CLASS", p.SchoolClass),
			leaf("LANGUAGE_AT_HOME", p.LanguageAtHome.String()),
			leaf("EXPIRATION", p.Expiration.Format(dateLayout)),
			leaf("APPROVER_FIRST_NAME", p.ApproverFirstName),
			leaf("APPROVER_LAST_NAME", p.ApproverLastName),
			leaf("APPROVER_PHONE", p.ApproverPhone),
			leaf("APPROVER_EMAIL", p.ApproverEmail),
			leaf("PHOTO_USAGE_APPROVED", p.PhotoUsageApproved),
			leaf("APPROVAL_NOTIFICATION_TIMESTAMP", optionalTime(p.ApprovalNotificationAt)),
			leaf("APPROVED_TIME", optionalTime(p.ApprovedAt)),
		},
	}

	if len(p.ContactPersons) > 0 {
		contacts := Node{Key: "ADDITIONAL_CONTACT_PERSONS"}
		for _, cp := range p.ContactPersons {
			contacts.Children = append(contacts.Children, Node{
				Key: "ADDITIONALCONTACTPERSON",
				Children: []Node{
					leaf("FIRST_NAME", cp.FirstName),
					leaf("LAST_NAME", cp.LastName),
					leaf("PHONE", cp.Phone),
					leaf("EMAIL", cp.Email),
				},
			})
		}
		root.Children = append(root.Children, contacts)
	}
	return root
}
