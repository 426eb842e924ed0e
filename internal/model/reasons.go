package model

// Machine-readable reason strings. Callers branch on these, not on error
// types; the set is closed.
const (
	ReasonMissingPath              = "missing_path"
	ReasonMissingURL               = "missing_url"
	ReasonInvalidURLScheme         = "invalid_url_scheme"
	ReasonInvalidURL               = "invalid_url"
	ReasonFetchOriginNotAllowed    = "fetch_origin_not_allowed"
	ReasonOwnerAuthFailed          = "owner_auth_failed"
	ReasonMissingModeKey           = "missing_mode_key"
	ReasonMissingModeValue         = "missing_mode_value"
	ReasonSharedSpaceNotConfigured = "shared_space_not_configured"
	ReasonPathOutsideSharedSpace   = "path_outside_shared_space"
	ReasonCapabilityNotFound       = "capability_not_found"
	ReasonEmptyInput               = "empty_input"
	ReasonNoRuleMatch              = "no_rule_match"
	ReasonMissingPersonaName       = "missing_persona_name"
	ReasonConfirmationRequired     = "confirmation_required"
)

// Rule ids emitted by the consistency guards.
const (
	RuleUngroundedRecall        = "ungrounded_recall"
	RuleTemporalDeicticMismatch = "temporal_deictic_mismatch"
	RuleUngroundedAction        = "ungrounded_personal_action"
	RulePronounRoleMismatch     = "pronoun_role_mismatch"
	RuleIdentityAdjusted        = "identity_adjusted"
	RuleRelationalAdjusted      = "relational_adjusted"
	RuleConstitutionBoundary    = "constitution_boundary"
	RuleBoundaryOverrideSignal  = "boundary_override_signal"
)

// Relational guard flags.
const (
	FlagServileSelfPositioning = "servile_self_positioning"
	FlagExcessiveApology       = "excessive_apology"
	FlagUnearnedIntimacy       = "unearned_intimacy"
)
