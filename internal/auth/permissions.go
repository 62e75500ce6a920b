package auth

import "recipe-backend/internal/models"

// Capability role sets, one per gated operation. Checked once at the
// route boundary via RequireRole; the predicates exist so the policy
// table lives in one place.

var (
	// CostRoles may view and recalculate recipe costs and update prices.
	CostRoles = []models.UserRole{models.RoleChef, models.RolePurchaser, models.RoleProducer}

	// SalesUploadRoles may import POS sales data.
	SalesUploadRoles = []models.UserRole{models.RoleService, models.RolePurchaser, models.RoleProducer}

	// IngredientManageRoles may edit the ingredient master and prices.
	IngredientManageRoles = []models.UserRole{models.RolePurchaser, models.RoleProducer}

	// RecipeEditRoles may create, edit and delete recipes.
	RecipeEditRoles = []models.UserRole{models.RoleChef, models.RoleProducer}

	// DesignEditRoles may edit a recipe's service and experience design.
	// Service staff shape the at-table side, so they join the chefs here.
	DesignEditRoles = []models.UserRole{models.RoleChef, models.RoleService, models.RoleProducer}

	// StoreManageRoles may edit the store master.
	StoreManageRoles = []models.UserRole{models.RoleProducer}

	// FeedbackRegisterRoles may register guest feedback. Purchasing has
	// no guest contact, so it is excluded.
	FeedbackRegisterRoles = []models.UserRole{models.RoleChef, models.RoleService, models.RoleProducer}

	// KnowledgeModerateRoles may edit or delete any knowledge article;
	// everyone else is limited to their own.
	KnowledgeModerateRoles = []models.UserRole{models.RoleProducer}
)

func roleIn(role models.UserRole, set []models.UserRole) bool {
	for _, r := range set {
		if r == role {
			return true
		}
	}
	return false
}

func CanViewCost(role models.UserRole) bool      { return roleIn(role, CostRoles) }
func CanUpdateCost(role models.UserRole) bool    { return roleIn(role, CostRoles) }
func CanUploadSales(role models.UserRole) bool   { return roleIn(role, SalesUploadRoles) }
func CanManageStores(role models.UserRole) bool  { return roleIn(role, StoreManageRoles) }
func CanEditRecipes(role models.UserRole) bool   { return roleIn(role, RecipeEditRoles) }
func CanEditDesigns(role models.UserRole) bool   { return roleIn(role, DesignEditRoles) }
func CanManageIngredients(role models.UserRole) bool {
	return roleIn(role, IngredientManageRoles)
}
func CanRegisterFeedback(role models.UserRole) bool {
	return roleIn(role, FeedbackRegisterRoles)
}
func CanModerateKnowledge(role models.UserRole) bool {
	return roleIn(role, KnowledgeModerateRoles)
}
