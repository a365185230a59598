package shared

// Permission strings follow the "<resource>:<action>" convention.
const (
	PermUserRead   = "user:read"
	PermUserCreate = "user:create"
	PermUserUpdate = "user:update"
	PermUserDelete = "user:delete"

	PermRoleRead   = "role:read"
	PermRoleCreate = "role:create"
	PermRoleUpdate = "role:update"
	PermRoleDelete = "role:delete"

	PermPermissionRead   = "permission:read"
	PermPermissionCreate = "permission:create"
	PermPermissionDelete = "permission:delete"

	PermClientRead   = "client:read"
	PermClientCreate = "client:create"
	PermClientUpdate = "client:update"
	PermClientDelete = "client:delete"

	PermStaffRead   = "staff:read"
	PermStaffCreate = "staff:create"
	PermStaffUpdate = "staff:update"
	PermStaffDelete = "staff:delete"

	PermBeneficiaryRead   = "beneficiary:read"
	PermBeneficiaryCreate = "beneficiary:create"
	PermBeneficiaryUpdate = "beneficiary:update"
	PermBeneficiaryDelete = "beneficiary:delete"

	PermContractRead   = "contract:read"
	PermContractCreate = "contract:create"
	PermContractUpdate = "contract:update"
	PermContractDelete = "contract:delete"

	PermDocumentRead   = "document:read"
	PermDocumentCreate = "document:create"
	PermDocumentDelete = "document:delete"

	PermIndustryRead   = "industry:read"
	PermIndustryCreate = "industry:create"
	PermIndustryUpdate = "industry:update"
	PermIndustryDelete = "industry:delete"

	PermJobRead   = "job:read"
	PermAuditRead = "audit:read"
)
