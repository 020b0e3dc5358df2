// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package store_test

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/pennmush/internal/attribute"
	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/store"
	"github.com/holomush/pennmush/internal/world"
)

const integrationWorld = `
god: 1
objects:
  - {ref: 0, name: Lobby, type: room}
  - {ref: 1, name: God, type: player, location: 0}
  - ref: 4
    name: Box
    type: thing
    location: 0
    attributes:
      - {name: DESCRIBE, value: A plain box.}
      - {name: LISTEN, value: "$open *:@emit opening %0", flags: [no_command]}
`

func newAttributeStore(opts ...attribute.Option) *attribute.Store {
	f, err := world.LoadFixture(strings.NewReader(integrationWorld))
	Expect(err).NotTo(HaveOccurred())
	g, err := f.Build()
	Expect(err).NotTo(HaveOccurred())
	return attribute.NewStore(g, opts...)
}

var _ = Describe("PostgreSQL persistence", Ordered, func() {
	var (
		ctx       context.Context
		container *postgres.PostgresContainer
		connStr   string
		pool      *pgxpool.Pool
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("pennmush_test"),
			postgres.WithUsername("pennmush"),
			postgres.WithPassword("pennmush"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err = container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		m, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Up()).To(Succeed())
		Expect(m.Close()).To(Succeed())

		pool, err = store.Connect(ctx, connStr, store.DefaultConnectOptions())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if pool != nil {
			pool.Close()
		}
		if container != nil {
			_ = container.Terminate(ctx)
		}
	})

	Describe("Migrator", func() {
		It("steps down and back up", func() {
			m, err := store.NewMigrator(connStr)
			Expect(err).NotTo(HaveOccurred())
			defer m.Close()

			latest, dirty, err := m.Version()
			Expect(err).NotTo(HaveOccurred())
			Expect(dirty).To(BeFalse())
			Expect(latest).To(BeNumerically(">", 0))

			Expect(m.Steps(-1)).To(Succeed())
			v, _, err := m.Version()
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(latest - 1))

			pending, err := m.Pending()
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(Equal([]uint{latest}))

			Expect(m.Up()).To(Succeed())
		})
	})

	Describe("PostgresAttributeRepository", func() {
		It("seeds a world once and hydrates it back", func() {
			repo := store.NewPostgresAttributeRepository(pool)
			src := newAttributeStore()
			f, err := world.LoadFixture(strings.NewReader(integrationWorld))
			Expect(err).NotTo(HaveOccurred())
			Expect(src.LoadFixture(f)).To(Succeed())

			created, skipped, err := repo.Seed(ctx, src)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(Equal(2))
			Expect(skipped).To(Equal(0))

			created, skipped, err = repo.Seed(ctx, src)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(Equal(0))
			Expect(skipped).To(Equal(2))

			dst := newAttributeStore()
			n, err := repo.Hydrate(ctx, dst)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
			Expect(dst.Get(4, "DESCRIBE").Value()).To(Equal("A plain box."))
			Expect(dst.Get(4, "LISTEN").Flags()).To(Equal(src.Get(4, "LISTEN").Flags()))
		})

		It("follows the store through a journal", func() {
			j := store.NewJournal(pool)
			s := newAttributeStore(attribute.WithObserver(j))
			Expect(s.Add(4, "SMELL", "Cardboard.", 1, 0).Code).To(Equal(attribute.OK))
			_, err := j.Flush(ctx)
			Expect(err).NotTo(HaveOccurred())

			recs, err := store.NewPostgresAttributeRepository(pool).Load(ctx, dbref.Ref(4))
			Expect(err).NotTo(HaveOccurred())
			var names []string
			for _, r := range recs {
				names = append(names, r.Name)
			}
			Expect(names).To(ContainElement("SMELL"))

			Expect(s.Clear(4, "SMELL", 1).Code).To(Equal(attribute.OK))
			_, err = j.Flush(ctx)
			Expect(err).NotTo(HaveOccurred())

			recs, err = store.NewPostgresAttributeRepository(pool).Load(ctx, dbref.Ref(4))
			Expect(err).NotTo(HaveOccurred())
			for _, r := range recs {
				Expect(r.Name).NotTo(Equal("SMELL"))
			}
		})
	})

	Describe("PostgresCommandRepository", func() {
		It("replays customizations in the order they were made", func() {
			repo := store.NewPostgresCommandRepository(pool)
			Expect(repo.Reset(ctx)).To(Succeed())

			made := []command.Customization{
				{Kind: command.CustomAdd, Command: "+FINGER", Policy: command.ParsePolicy{EqSplit: true}},
				{Kind: command.CustomAlias, Command: "+FINGER", Arg: "+F"},
				{Kind: command.CustomHook, Command: "+FINGER", Hook: "before", Arg: "#4/PRE", Inplace: true},
			}
			for _, c := range made {
				Expect(repo.RecordCustomization(ctx, c)).To(Succeed())
				time.Sleep(2 * time.Millisecond)
			}

			got, err := repo.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(made))
		})
	})
})
