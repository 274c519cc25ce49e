package core

import "fmt"

// ValidateItemID checks that an id satisfies the constraints the batch
// service imposes on item keys.
func ValidateItemID(id string) error {
	if id == "" {
		return ErrEmptyItemID
	}
	if len(id) > ItemIDMaxLength {
		return fmt.Errorf("item id %q exceeds %d characters", id, ItemIDMaxLength)
	}
	for _, r := range id {
		if !isIDRune(r) {
			return fmt.Errorf("item id %q contains disallowed character %q", id, r)
		}
	}
	return nil
}

// ValidateTagSet checks structural validity of a tag set.
func ValidateTagSet(ts TagSet) error {
	for name := range ts {
		if name == "" {
			return ErrEmptyTagName
		}
	}
	return nil
}

func isIDRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') || r == '_' || r == '-'
}
