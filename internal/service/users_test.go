package service

import (
	"context"
	"errors"
	"testing"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
	"github.com/arjun8815/spinwise-erp/internal/identity"
)

func validCreateInput() CreateUserInput {
	return CreateUserInput{
		Email:     "spinner@spinwise.local",
		Password:  "secret1",
		FirstName: "Ravi",
		LastName:  "Kumar",
		Phone:     "+91 98765 43210",
		Role:      "employee",
		Language:  "tamil",
	}
}

func TestUserService_Create(t *testing.T) {
	store := setupStore(t)
	accounts := &fakeAccounts{}
	svc := NewUserService(accounts, store.Profiles, store.Profiles, testLogger())

	p, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID != "u-spinner@spinwise.local" || p.Role != rbac.RoleEmployee || p.PreferredLanguage != model.LanguageTamil {
		t.Errorf("профиль = %+v", p)
	}
	if p.Phone == nil || *p.Phone != "+91 98765 43210" {
		t.Errorf("Phone = %v", p.Phone)
	}

	got, err := svc.Get(context.Background(), p.ID)
	if err != nil || got.Email != "spinner@spinwise.local" {
		t.Errorf("Get() = %+v, %v", got, err)
	}
}

func TestUserService_CreateErrors(t *testing.T) {
	tests := []struct {
		name     string
		accounts *fakeAccounts
		mutate   func(*CreateUserInput)
		want     error
	}{
		{"некорректная роль", &fakeAccounts{}, func(in *CreateUserInput) { in.Role = "owner" }, ErrValidation},
		{"короткий пароль", &fakeAccounts{}, func(in *CreateUserInput) { in.Password = "123" }, ErrValidation},
		{"некорректный телефон", &fakeAccounts{}, func(in *CreateUserInput) { in.Phone = "123" }, ErrValidation},
		{"email занят у поставщика", &fakeAccounts{createErr: identity.ErrConflict}, func(*CreateUserInput) {}, ErrConflict},
		{"поставщик недоступен", &fakeAccounts{createErr: identity.ErrUnavailable}, func(*CreateUserInput) {}, ErrIDPUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupStore(t)
			svc := NewUserService(tt.accounts, store.Profiles, store.Profiles, testLogger())
			in := validCreateInput()
			tt.mutate(&in)
			if _, err := svc.Create(context.Background(), in); !errors.Is(err, tt.want) {
				t.Errorf("ошибка = %v, ожидалась %v", err, tt.want)
			}
		})
	}
}

func TestUserService_CreateProfileFailureDeletesAccount(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	// профиль с тем же email уже есть, у поставщика учётной записи нет
	if err := store.Profiles.Create(ctx, &model.Profile{
		ID: "legacy-spinner", Email: "spinner@spinwise.local", FirstName: "Old", LastName: "Profile",
		PreferredLanguage: model.DefaultLanguage, Role: rbac.RoleEmployee,
	}); err != nil {
		t.Fatalf("Create profile: %v", err)
	}

	t.Run("учётная запись удалена", func(t *testing.T) {
		accounts := &fakeAccounts{}
		svc := NewUserService(accounts, store.Profiles, store.Profiles, testLogger())

		if _, err := svc.Create(ctx, validCreateInput()); !errors.Is(err, ErrConflict) {
			t.Fatalf("ошибка = %v, ожидалась ErrConflict", err)
		}
		if len(accounts.deleted) != 1 || accounts.deleted[0] != "u-spinner@spinwise.local" {
			t.Errorf("удалены учётные записи %v", accounts.deleted)
		}
	})

	t.Run("удаление не удалось", func(t *testing.T) {
		accounts := &fakeAccounts{deleteErr: identity.ErrUnavailable}
		svc := NewUserService(accounts, store.Profiles, store.Profiles, testLogger())

		// ошибка профиля важнее ошибки отката
		if _, err := svc.Create(ctx, validCreateInput()); !errors.Is(err, ErrConflict) {
			t.Errorf("ошибка = %v, ожидалась ErrConflict", err)
		}
	})

	t.Run("отменённый запрос", func(t *testing.T) {
		accounts := &fakeAccounts{}
		svc := NewUserService(accounts, store.Profiles, store.Profiles, testLogger())

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _ = svc.Create(cctx, validCreateInput())
		if len(accounts.deleted) != len(accounts.created) {
			t.Errorf("создано %v, удалено %v", accounts.created, accounts.deleted)
		}
	})
}

func TestUserService_CreateWithMemoryProviderRetry(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	provider, err := identity.NewMemory(testLogger())
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	svc := NewUserService(provider, store.Profiles, store.Profiles, testLogger())

	if err := store.Profiles.Create(ctx, &model.Profile{
		ID: "legacy-spinner", Email: "spinner@spinwise.local", FirstName: "Old", LastName: "Profile",
		PreferredLanguage: model.DefaultLanguage, Role: rbac.RoleEmployee,
	}); err != nil {
		t.Fatalf("Create profile: %v", err)
	}
	if _, err := svc.Create(ctx, validCreateInput()); !errors.Is(err, ErrConflict) {
		t.Fatalf("ошибка = %v, ожидалась ErrConflict", err)
	}
	if _, err := provider.Authenticate(ctx, "spinner@spinwise.local", "secret1"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Errorf("учётная запись без профиля не должна оставаться: %v", err)
	}

	// email свободен у поставщика: повтор не упирается в конфликт
	if _, err := provider.CreateUser(ctx, "spinner@spinwise.local", "secret1"); err != nil {
		t.Errorf("CreateUser после отката: %v", err)
	}
}

func TestUserService_CreateValidationSkipsProvider(t *testing.T) {
	store := setupStore(t)
	accounts := &fakeAccounts{}
	svc := NewUserService(accounts, store.Profiles, store.Profiles, testLogger())

	in := validCreateInput()
	in.Email = "not-an-email"
	_, _ = svc.Create(context.Background(), in)
	if len(accounts.created) != 0 {
		t.Error("учётная запись создана при невалидных данных")
	}
}

func TestUserService_List(t *testing.T) {
	store := setupStore(t)
	svc := NewUserService(&fakeAccounts{}, store.Profiles, store.Profiles, testLogger())
	ctx := context.Background()

	all, err := svc.List(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("List() = %d, %v", len(all), err)
	}
	managers, err := svc.List(ctx, "manager")
	if err != nil || len(managers) != 1 || managers[0].Role != rbac.RoleManager {
		t.Errorf("List(manager) = %v, %v", managers, err)
	}
	if _, err := svc.List(ctx, "owner"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("ошибка = %v, ожидалась ErrInvalidRole", err)
	}
}

func TestUserService_Update(t *testing.T) {
	store := setupStore(t)
	accounts := &fakeAccounts{}
	svc := NewUserService(accounts, store.Profiles, store.Profiles, testLogger())
	ctx := context.Background()
	employee := identity.SeedUsers()[2]

	updated, err := svc.Update(ctx, employee.ID, UpdateUserInput{
		Role:     ptr("manager"),
		Language: ptr("hindi"),
		Password: ptr("newpass1"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Role != rbac.RoleManager || updated.PreferredLanguage != model.LanguageHindi {
		t.Errorf("профиль = %+v", updated)
	}
	if accounts.passwords[employee.ID] != "newpass1" {
		t.Error("пароль не передан поставщику")
	}
}

func TestUserService_UpdatePasswordFailureRollsBack(t *testing.T) {
	store := setupStore(t)
	svc := NewUserService(&fakeAccounts{passwordErr: identity.ErrUnavailable}, store.Profiles, store.Profiles, testLogger())
	ctx := context.Background()
	employee := identity.SeedUsers()[2]

	_, err := svc.Update(ctx, employee.ID, UpdateUserInput{Role: ptr("admin"), Password: ptr("newpass1")})
	if !errors.Is(err, ErrIDPUnavailable) {
		t.Fatalf("ошибка = %v, ожидалась ErrIDPUnavailable", err)
	}

	p, _ := store.Profiles.GetByID(ctx, employee.ID)
	if p.Role != rbac.RoleEmployee {
		t.Errorf("роль = %s, изменение должно быть откачено", p.Role)
	}
}

func TestUserService_UpdateNotFound(t *testing.T) {
	store := setupStore(t)
	svc := NewUserService(&fakeAccounts{}, store.Profiles, store.Profiles, testLogger())

	_, err := svc.Update(context.Background(), "missing", UpdateUserInput{FirstName: ptr("X")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ошибка = %v, ожидалась ErrNotFound", err)
	}
}

func TestUserService_SetLanguage(t *testing.T) {
	store := setupStore(t)
	svc := NewUserService(&fakeAccounts{}, store.Profiles, store.Profiles, testLogger())
	ctx := context.Background()
	admin := identity.SeedUsers()[0]

	if err := svc.SetLanguage(ctx, admin.ID, model.LanguageKannada); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	p, _ := store.Profiles.GetByID(ctx, admin.ID)
	if p.PreferredLanguage != model.LanguageKannada {
		t.Errorf("язык = %q", p.PreferredLanguage)
	}

	if err := svc.SetLanguage(ctx, admin.ID, "klingon"); !errors.Is(err, ErrValidation) {
		t.Errorf("ошибка = %v, ожидалась ErrValidation", err)
	}
	if err := svc.SetLanguage(ctx, "missing", model.LanguageHindi); !errors.Is(err, ErrNotFound) {
		t.Errorf("ошибка = %v, ожидалась ErrNotFound", err)
	}
}
