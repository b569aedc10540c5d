package api

import (
	"github.com/SundayYogurt/rolematch/internal/domain"
	"github.com/SundayYogurt/rolematch/internal/helper"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const demoPassword = "password123"

// seedDemoData fills an empty database with a small set of users, projects
// and roles. It does nothing once any user exists.
func seedDemoData(db *gorm.DB, log logrus.FieldLogger) error {
	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("seed skipped - users already present")
		return nil
	}

	hash, err := helper.HashPassword(demoPassword)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		users := []*domain.User{
			{Username: "student1", RealName: "Li Wei", UserType: domain.UserTypeStudent, SchoolCompany: "Tsinghua University", SkillTags: []string{"Go", "SQL"}, Contact: "student1@example.com"},
			{Username: "student2", RealName: "Zhang Min", UserType: domain.UserTypeStudent, SchoolCompany: "Fudan University", SkillTags: []string{"React", "UI"}, Contact: "student2@example.com"},
			{Username: "enterprise1", RealName: "Chen Jie", UserType: domain.UserTypeEnterprise, SchoolCompany: "Blue Sky Tech", Contact: "hr@bluesky.example.com"},
			{Username: "enterprise2", RealName: "Wang Fang", UserType: domain.UserTypeEnterprise, SchoolCompany: "Green Data Ltd", Contact: "jobs@greendata.example.com"},
		}
		for _, u := range users {
			u.PasswordHash = hash
			u.Status = domain.UserStatusActive
			if err := tx.Create(u).Error; err != nil {
				return err
			}
		}

		projects := []*domain.Project{
			{Name: "Campus Marketplace", Description: "A second-hand trading platform for students.", PublisherID: users[2].ID, Company: users[2].SchoolCompany, Status: domain.ProjectStatusRecruiting},
			{Name: "Energy Dashboard", Description: "Visualise building energy usage.", PublisherID: users[3].ID, Company: users[3].SchoolCompany, Status: domain.ProjectStatusRecruiting},
		}
		for _, p := range projects {
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}

		roles := []*domain.Role{
			{ProjectID: projects[0].ID, Name: "Backend Developer", TaskDesc: "Build the order and listing APIs.", SkillTags: []string{"Go", "PostgreSQL"}, LimitNum: 2, Status: domain.RoleStatusRecruiting},
			{ProjectID: projects[0].ID, Name: "Frontend Developer", TaskDesc: "Build the listing pages.", SkillTags: []string{"React"}, LimitNum: 1, Status: domain.RoleStatusRecruiting},
			{ProjectID: projects[1].ID, Name: "Data Analyst", TaskDesc: "Clean and chart meter data.", SkillTags: []string{"SQL", "Python"}, LimitNum: 1, Status: domain.RoleStatusRecruiting},
		}
		for _, r := range roles {
			if err := tx.Create(r).Error; err != nil {
				return err
			}
		}

		log.WithFields(logrus.Fields{
			"users":    len(users),
			"projects": len(projects),
			"roles":    len(roles),
		}).Info("demo data seeded")
		return nil
	})
}
