package masterdata

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// UniquenessPolicy определяет поведение при ошибке хранилища во время
// проверки уникальности. Исходная система молча продолжала мутацию,
// как будто конфликта нет; строгий режим прерывает workflow.
type UniquenessPolicy string

const (
	// UniquenessLenient — ошибка проверки логируется и трактуется как
	// отсутствие конфликта (поведение исходной системы).
	UniquenessLenient UniquenessPolicy = "lenient"
	// UniquenessStrict — ошибка проверки прерывает мутацию как
	// RepositoryError.
	UniquenessStrict UniquenessPolicy = "strict"
)

// checkUnique проверяет, существует ли запись, конфликтующая с ключом.
// ExcludeID внутри ключа не даёт записи конфликтовать с самой собой
// при update.
func checkUnique[T any](
	repo domain.Repository[T],
	key domain.UniqueKey,
	policy UniquenessPolicy,
	logger *log.Entry,
) (bool, error) {
	if key.Code == "" && key.Name == "" {
		return false, nil
	}

	conflicts, err := repo.GetByUniqueKey(key)
	if err != nil {
		if policy == UniquenessStrict {
			return false, domain.WrapRepository("uniqueness check", err)
		}
		logger.WithError(err).WithField("key", key.Display()).
			Warn("uniqueness check failed, proceeding without conflict")
		return false, nil
	}

	return len(conflicts) > 0, nil
}
