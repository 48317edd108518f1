package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

var errInvalidCredentials = errors.New("invalid credentials")

// StaffController signs staff in against the roster loaded at startup.
type StaffController struct {
	staff map[string]models.Staff
}

func NewStaffController(roster []models.Staff) *StaffController {
	sc := &StaffController{staff: make(map[string]models.Staff, len(roster))}
	for _, s := range roster {
		sc.staff[strings.ToLower(s.Name)] = s
	}
	return sc
}

// Login checks the PIN and returns a JWT carrying name and role.
func (sc *StaffController) Login(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required"`
		PIN  string `json:"pin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	member, ok := sc.staff[strings.ToLower(input.Name)]
	if !ok || !utils.CheckPIN(member.PINHash, input.PIN) {
		utils.ErrorLogger.Warnf("Failed login for %q from %s", input.Name, c.ClientIP())
		utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
		return
	}

	token, err := utils.GenerateToken(member.Name, member.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Infof("%s signed in (role=%s)", member.Name, member.Role)
	utils.RespondJSON(c, http.StatusOK, "Login success", gin.H{
		"token": token,
		"role":  member.Role,
	})
}

func (sc *StaffController) GetProfile(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Profile", gin.H{
		"name": c.GetString("staff_name"),
		"role": c.GetString("role"),
	})
}
