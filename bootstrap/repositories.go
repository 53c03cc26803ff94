package bootstrap

import (
	"github.com/sehee-xx/DO-DREAM-sub000/platform/database"
	"github.com/sehee-xx/DO-DREAM-sub000/repository"
)

type Repositories struct {
	FileRepository    repository.FileRepository
	PageRepository    repository.PageRepository
	SectionRepository repository.SectionRepository
}

func NewRepositories(db *database.DB) *Repositories {
	sqlDB := db.GetDatabase()
	return &Repositories{
		FileRepository:    repository.NewFileRepository(sqlDB),
		PageRepository:    repository.NewPageRepository(sqlDB),
		SectionRepository: repository.NewSectionRepository(sqlDB),
	}
}
