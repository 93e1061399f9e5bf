package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// ErrInvalidEnum is returned when a value falls outside its enumeration.
var ErrInvalidEnum = errors.New("value outside enumeration")

// Gender is shared by Customer.gender and Product.product_based_on_gender.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Genders lists the gender domain in declaration order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

func (g Gender) Valid() bool {
	for _, v := range Genders {
		if g == v {
			return true
		}
	}
	return false
}

func (g Gender) Value() (driver.Value, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("gender %q: %w", string(g), ErrInvalidEnum)
	}
	return string(g), nil
}

func (g *Gender) Scan(src interface{}) error {
	s, err := scanEnum(src)
	if err != nil {
		return fmt.Errorf("gender: %w", err)
	}
	v := Gender(s)
	if !v.Valid() {
		return fmt.Errorf("gender %q: %w", s, ErrInvalidEnum)
	}
	*g = v
	return nil
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH ON DELIVERY"
	PaymentCard           PaymentMethod = "CREDIT/DEBIT CARD"
	PaymentEWallet        PaymentMethod = "E-WALLETS"
	PaymentNetbanking     PaymentMethod = "NETBANKING"
)

var PaymentMethods = []PaymentMethod{PaymentCashOnDelivery, PaymentCard, PaymentEWallet, PaymentNetbanking}

// Label returns the human readable name shown in the admin console.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCashOnDelivery:
		return "Cash on Delivery"
	case PaymentCard:
		return "Credit/Debit Card"
	case PaymentEWallet:
		return "E-Wallets"
	case PaymentNetbanking:
		return "Netbanking"
	}
	return string(m)
}

func (m PaymentMethod) Valid() bool {
	for _, v := range PaymentMethods {
		if m == v {
			return true
		}
	}
	return false
}

func (m PaymentMethod) Value() (driver.Value, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("payment method %q: %w", string(m), ErrInvalidEnum)
	}
	return string(m), nil
}

func (m *PaymentMethod) Scan(src interface{}) error {
	s, err := scanEnum(src)
	if err != nil {
		return fmt.Errorf("payment method: %w", err)
	}
	v := PaymentMethod(s)
	if !v.Valid() {
		return fmt.Errorf("payment method %q: %w", s, ErrInvalidEnum)
	}
	*m = v
	return nil
}

type PaymentStatus string

// Payment statuses
const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

var PaymentStatuses = []PaymentStatus{PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed}

func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CanTransition reports whether a payment may move from s to next.
// Only PENDING moves, and only to COMPLETED or FAILED.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	return s == PaymentStatusPending && (next == PaymentStatusCompleted || next == PaymentStatusFailed)
}

func (s PaymentStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("payment status %q: %w", string(s), ErrInvalidEnum)
	}
	return string(s), nil
}

func (s *PaymentStatus) Scan(src interface{}) error {
	str, err := scanEnum(src)
	if err != nil {
		return fmt.Errorf("payment status: %w", err)
	}
	v := PaymentStatus(str)
	if !v.Valid() {
		return fmt.Errorf("payment status %q: %w", str, ErrInvalidEnum)
	}
	*s = v
	return nil
}

// EnumValues returns the string domain of each enumeration, keyed by type name.
// The schema package renders CHECK constraints from it.
func EnumValues() map[string][]string {
	out := map[string][]string{}
	for _, g := range Genders {
		out["Gender"] = append(out["Gender"], string(g))
	}
	for _, m := range PaymentMethods {
		out["PaymentMethod"] = append(out["PaymentMethod"], string(m))
	}
	for _, s := range PaymentStatuses {
		out["PaymentStatus"] = append(out["PaymentStatus"], string(s))
	}
	return out
}

func scanEnum(src interface{}) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("null value: %w", ErrInvalidEnum)
	default:
		return "", fmt.Errorf("unsupported type %T", src)
	}
}
