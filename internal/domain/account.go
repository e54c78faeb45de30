/**
 * @description
 * This file defines the internal domain models for holders and for the link
 * between a Quiltt profile and the Method entity that owns accounts created
 * for it.
 *
 * @notes
 * - A Holder row is created during onboarding (outside this service) and is
 *   read-only here: the sync pipeline only resolves holder identity from it.
 */
package domain

import "time"

// Holder links an application user to their provider identities. The sync
// workflow requires MethodEntityID as the holder of any account it creates.
type Holder struct {
	ID              string    `json:"id"`
	QuilttProfileID string    `json:"quiltt_profile_id"`
	MethodEntityID  string    `json:"method_entity_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
