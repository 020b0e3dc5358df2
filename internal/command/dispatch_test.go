// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/pennmush/internal/dbref"
)

var _ = Describe("Dispatcher", func() {
	var h *harness

	BeforeEach(func() {
		h = newHarness(GinkgoT())
	})

	Describe("rejected input", func() {
		It("ignores blank lines", func() {
			Expect(h.run(alice, "   ")).To(Equal(OutcomeEmpty))
			Expect(h.run(alice, "] ")).To(Equal(OutcomeEmpty))
			Expect(h.run(alice, "} ]")).To(Equal(OutcomeEmpty))
			Expect(h.ran("HUH_COMMAND")).To(BeFalse())
		})

		It("skips spaces after the debug token", func() {
			Expect(h.run(alice, "}  think hi")).To(Equal(OutcomeCommand))
			Expect(h.notesFor(alice)).To(Equal([]string{"hi"}))
		})

		It("refuses executors that do not exist", func() {
			Expect(h.d.Process(context.Background(), Request{Executor: dbref.Ref(999), Input: "think hi"})).
				To(Equal(OutcomeRejected))
		})

		It("tells the owner when a halted object tries to run a command", func() {
			h.graph.SetFlag(widget, "HALT", true)
			out := h.d.Process(context.Background(), Request{
				Executor: widget, Enactor: widget, Caller: widget, Input: "think hi",
			})
			Expect(out).To(Equal(OutcomeRejected))
			Expect(h.notesFor(alice)).To(ContainElement("Attempt to execute command by halted object #4"))
			Expect(h.ran("THINK")).To(BeFalse())
		})
	})

	Describe("table commands", func() {
		It("runs a command named by a unique prefix", func() {
			Expect(h.run(alice, "thi hello %n")).To(Equal(OutcomeCommand))
			Expect(h.notesFor(alice)).To(Equal([]string{"hello Alice"}))
		})

		It("treats an ambiguous prefix as no command", func() {
			Expect(h.run(alice, "s hello")).To(Equal(OutcomeHuh))
			Expect(h.notesFor(alice)).To(Equal([]string{HuhMessage}))
		})

		It("passes disabled commands on to the cascade", func() {
			h.table.SetDisabled(h.table.FindExact("THINK"), true)
			Expect(h.run(alice, "think hi")).To(Equal(OutcomeHuh))
			Expect(h.ran("THINK")).To(BeFalse())
		})

		It("sets NONE when no switch is given", func() {
			h.run(alice, "@tel me=here")
			inv := h.lastCall()
			Expect(inv.Command.Name).To(Equal("@TEL"))
			Expect(inv.Has(SwitchNone)).To(BeTrue())
			Expect(inv.Left).To(Equal("me"))
			Expect(inv.Right).To(Equal("here"))
			Expect(inv.RHSPresent).To(BeTrue())
		})

		It("resolves switch prefixes", func() {
			h.run(alice, "@tel/sil me=here")
			inv := h.lastCall()
			Expect(inv.Has("SILENT")).To(BeTrue())
			Expect(inv.Has(SwitchNone)).To(BeFalse())
			Expect(inv.Evaled).To(Equal("@TEL/sil me=here"))
		})

		It("reports an unknown switch without running the command", func() {
			Expect(h.run(alice, "@tel/bogus me")).To(Equal(OutcomeCommand))
			Expect(h.ran("@TEL")).To(BeFalse())
			Expect(h.notesFor(alice)).To(Equal([]string{"@TEL doesn't know switch BOGUS."}))
		})

		It("hands unknown switches to commands that accept any", func() {
			h.run(alice, "@lock/use/basic me=#1")
			inv := h.lastCall()
			Expect(inv.Command.Name).To(Equal("@LOCK"))
			Expect(inv.Extra).To(Equal("USE BASIC"))
		})

		It("splits positional arguments on both sides", func() {
			h.run(alice, "@args a, b ,c=x,y")
			inv := h.lastCall()
			Expect(inv.LeftArgs).To(Equal([]string{"a", "b", "c"}))
			Expect(inv.RightArgs).To(Equal([]string{"x", "y"}))
			Expect(inv.Evaled).To(Equal("@ARGS a,b,c=x,y"))
		})

		It("runs WARN_ON_MISSING for input starting with a bracket", func() {
			Expect(h.run(alice, "[foo]")).To(Equal(OutcomeCommand))
			inv := h.lastCall()
			Expect(inv.Command.Name).To(Equal("WARN_ON_MISSING"))
			Expect(inv.Left).To(Equal("[foo]"))
		})

		It("keeps internal commands out of reach by name", func() {
			Expect(h.run(alice, "huh_command")).To(Equal(OutcomeHuh))
			inv := h.lastCall()
			Expect(inv.Command.Name).To(Equal("HUH_COMMAND"))
			Expect(inv.Left).To(Equal("huh_command"))
		})
	})

	Describe("tokens", func() {
		It("turns the say token into SAY", func() {
			h.run(alice, `"hello %n`)
			inv := h.lastCall()
			Expect(inv.Command.Name).To(Equal("SAY"))
			Expect(inv.Left).To(Equal("hello Alice"))
			Expect(inv.Evaled).To(Equal("SAY hello Alice"))
			Expect(inv.Has(SwitchNone)).To(BeTrue())
		})

		It("turns the pose tokens into POSE and SEMIPOSE", func() {
			h.run(alice, ":waves")
			Expect(h.lastCall().Command.Name).To(Equal("POSE"))
			Expect(h.lastCall().Left).To(Equal("waves"))

			h.run(alice, ";'s here")
			Expect(h.lastCall().Command.Name).To(Equal("SEMIPOSE"))
			Expect(h.lastCall().Left).To(Equal("'s here"))

			h.run(alice, "; waves")
			Expect(h.lastCall().Command.Name).To(Equal("POSE"))
			Expect(h.lastCall().Left).To(Equal("waves"))
		})

		It("turns the emit token into @EMIT", func() {
			h.run(alice, `\hello`)
			Expect(h.lastCall().Command.Name).To(Equal("@EMIT"))
			Expect(h.lastCall().Left).To(Equal("hello"))
		})

		It("leaves arguments unevaluated after the noeval token", func() {
			Expect(h.run(alice, "]think %n")).To(Equal(OutcomeCommand))
			Expect(h.notesFor(alice)).To(Equal([]string{"%n"}))
			Expect(h.lastCall().Has(SwitchNoEval)).To(BeTrue())
		})

		It("rewrites #dbref text into @FORCE", func() {
			Expect(h.run(alice, "#4 push %n")).To(Equal(OutcomeCommand))
			inv := h.lastCall()
			Expect(inv.Command.Name).To(Equal("@FORCE"))
			Expect(inv.Left).To(Equal("#4"))
			Expect(inv.Right).To(Equal("push %n"))
			Expect(inv.Has(SwitchNoEval)).To(BeTrue())
		})

		It("ignores the chat token without a channel matcher", func() {
			Expect(h.run(alice, "+pub hello")).To(Equal(OutcomeHuh))
			Expect(h.ran("@CHAT")).To(BeFalse())
		})

		Context("with channels", func() {
			BeforeEach(func() {
				h = newHarness(GinkgoT(), WithChannelMatcher(channelSet{"Public"}))
			})

			It("turns the chat token into @CHAT for a known channel", func() {
				Expect(h.run(alice, "+pub hello")).To(Equal(OutcomeCommand))
				inv := h.lastCall()
				Expect(inv.Command.Name).To(Equal("@CHAT"))
				Expect(inv.Left).To(Equal("pub"))
				Expect(inv.Right).To(Equal("hello"))
			})

			It("falls through for an unknown channel", func() {
				Expect(h.run(alice, "+nochan hello")).To(Equal(OutcomeHuh))
				Expect(h.ran("@CHAT")).To(BeFalse())
			})
		})
	})

	Describe("attribute setting", func() {
		It("sends &NAME to ATTRIB_SET with a literal value from a socket", func() {
			Expect(h.run(alice, "&foo me=bar %n")).To(Equal(OutcomeCommand))
			inv := h.lastCall()
			Expect(inv.Command.Name).To(Equal("ATTRIB_SET"))
			Expect(inv.Extra).To(Equal("FOO"))
			Expect(inv.Left).To(Equal("me"))
			Expect(inv.Right).To(Equal("bar %n"))
			Expect(inv.Has(SwitchNoEval)).To(BeTrue())
		})

		It("evaluates the value when the input comes from code", func() {
			out := h.d.Process(context.Background(), Request{
				Executor: alice, Enactor: alice, Caller: alice, Input: "&foo me=bar %n",
			})
			Expect(out).To(Equal(OutcomeCommand))
			Expect(h.lastCall().Right).To(Equal("bar Alice"))
		})

		It("maps @attribute to the standard attribute", func() {
			h.run(alice, "@desc me=A person.")
			inv := h.lastCall()
			Expect(inv.Command.Name).To(Equal("ATTRIB_SET"))
			Expect(inv.Extra).To(Equal("DESCRIBE"))
		})
	})

	Describe("permissions", func() {
		It("denies commands whose lock fails", func() {
			Expect(h.run(alice, "@wizonly")).To(Equal(OutcomeDenied))
			Expect(h.notesFor(alice)).To(Equal([]string{"Permission denied."}))
			Expect(h.run(god, "@wizonly")).To(Equal(OutcomeCommand))
		})

		It("shows the restriction message", func() {
			cmd := h.table.FindExact("@WIZONLY")
			Expect(h.table.Restrict(cmd, `WIZARD "Wizards only.`)).To(Succeed())
			h.run(alice, "@wizonly")
			Expect(h.notesFor(alice)).To(Equal([]string{"Wizards only."}))
		})

		It("keeps guests away from @password", func() {
			Expect(h.run(guest, "@password a=b")).To(Equal(OutcomeDenied))
		})

		It("keeps gagged players from speaking", func() {
			Expect(h.run(gagged, "say hi")).To(Equal(OutcomeDenied))
		})

		It("skips $commands for gagged players", func() {
			Expect(h.run(gagged, "push button")).To(Equal(OutcomeHuh))
			Expect(h.notesFor(widget)).To(BeEmpty())
			Expect(h.notesFor(gagged)).To(Equal([]string{HuhMessage}))
		})
	})

	Describe("the $command cascade", func() {
		It("matches objects in the room", func() {
			Expect(h.run(alice, "push button")).To(Equal(OutcomeMatched))
			Expect(h.notesFor(widget)).To(Equal([]string{"pushed button"}))
			Expect(h.notesFor(zmo)).To(BeEmpty())
		})

		It("runs every matching object in the room in contents order and skips the room", func() {
			for _, obj := range []dbref.Ref{widget, booth, lobby} {
				Expect(h.attrs.Add(obj, "RING", "$ring *:think rang %0", god, 0).OK()).To(BeTrue())
			}
			Expect(h.run(alice, "ring bell")).To(Equal(OutcomeMatched))
			Expect(h.thinkers()).To(Equal([]dbref.Ref{widget, booth}))
			Expect(h.notesFor(widget)).To(Equal([]string{"rang bell"}))
			Expect(h.notesFor(booth)).To(Equal([]string{"rang bell"}))
			Expect(h.notesFor(lobby)).To(BeEmpty())
		})

		It("matches the room itself when nothing in it does", func() {
			Expect(h.attrs.Add(lobby, "RING", "$ring *:think rang %0", god, 0).OK()).To(BeTrue())
			Expect(h.run(alice, "ring bell")).To(Equal(OutcomeMatched))
			Expect(h.thinkers()).To(Equal([]dbref.Ref{lobby}))
		})

		It("queues a $command action once without a Huh message", func() {
			q := &recordingQueue{}
			h = newHarness(GinkgoT(), WithQueue(q))
			Expect(h.attrs.Add(widget, "FOO", "$xyzzy:@emit Found it", god, 0).OK()).To(BeTrue())

			Expect(h.run(alice, "xyzzy")).To(Equal(OutcomeMatched))
			Expect(q.entries).To(HaveLen(1))
			Expect(q.entries[0].Executor).To(Equal(widget))
			Expect(q.entries[0].Enactor).To(Equal(alice))
			Expect(q.entries[0].Code).To(Equal("@emit Found it"))
			Expect(h.notesFor(alice)).NotTo(ContainElement(HuhMessage))
			Expect(h.ran("HUH_COMMAND")).To(BeFalse())
		})

		It("runs the queued $command action as a single emit", func() {
			Expect(h.attrs.Add(widget, "FOO", "$xyzzy:@emit Found it", god, 0).OK()).To(BeTrue())

			Expect(h.run(alice, "xyzzy")).To(Equal(OutcomeMatched))
			emits := 0
			for _, inv := range h.callsSnapshot() {
				if inv.Command.Name == "@EMIT" {
					emits++
					Expect(inv.Executor).To(Equal(widget))
					Expect(inv.Left).To(Equal("Found it"))
				}
			}
			Expect(emits).To(Equal(1))
			Expect(h.notesFor(alice)).NotTo(ContainElement(HuhMessage))
		})

		It("matches objects carried by the executor", func() {
			Expect(h.run(alice, "shake")).To(Equal(OutcomeMatched))
			Expect(h.notesFor(bag)).To(Equal([]string{"rattle"}))
		})

		It("matches the zone master", func() {
			Expect(h.run(alice, "zonecmd")).To(Equal(OutcomeMatched))
			Expect(h.notesFor(zmo)).To(Equal([]string{"zoned"}))
		})

		It("matches objects in the master room", func() {
			Expect(h.run(alice, "+global hi")).To(Equal(OutcomeMatched))
			Expect(h.notesFor(globals)).To(Equal([]string{"global hi"}))
		})

		It("moves through exits in the room", func() {
			Expect(h.run(alice, "n")).To(Equal(OutcomeCommand))
			inv := h.lastCall()
			Expect(inv.Command.Name).To(Equal("GOTO"))
			Expect(inv.Left).To(Equal("n"))
		})

		It("moves through exits in the master room", func() {
			Expect(h.run(alice, "sc")).To(Equal(OutcomeCommand))
			inv := h.lastCall()
			Expect(inv.Command.Name).To(Equal("GOTO"))
			Expect(inv.Left).To(Equal("sc"))
		})

		It("enters an object by its enter alias", func() {
			Expect(h.run(alice, "bo")).To(Equal(OutcomeCommand))
			inv := h.lastCall()
			Expect(inv.Command.Name).To(Equal("ENTER"))
			Expect(inv.Left).To(Equal("#11"))
		})

		It("leaves an object by its leave alias", func() {
			Expect(h.run(bob, "out")).To(Equal(OutcomeCommand))
			inv := h.lastCall()
			Expect(inv.Command.Name).To(Equal("LEAVE"))
			Expect(inv.Executor).To(Equal(bob))
		})

		It("shows lock failure messages when only locked objects matched", func() {
			Expect(h.run(alice, "open vault")).To(Equal(OutcomeLockFailure))
			Expect(h.notesFor(alice)).To(Equal([]string{"The vault is sealed."}))
			Expect(h.notesFor(god)).To(ContainElement("Alice rattles the vault."))
			Expect(h.notesFor(vault)).NotTo(ContainElement("opened"))
		})

		It("runs locked $commands for actors that pass", func() {
			Expect(h.run(god, "open vault")).To(Equal(OutcomeMatched))
			Expect(h.notesFor(vault)).To(ContainElement("opened"))
		})

		It("runs HUH_COMMAND when nothing matches", func() {
			Expect(h.run(alice, "xyzzy plugh")).To(Equal(OutcomeHuh))
			Expect(h.notesFor(alice)).To(Equal([]string{HuhMessage}))
			Expect(h.lastCall().Left).To(Equal("xyzzy plugh"))
		})

		It("notifies directly when HUH_COMMAND is disabled", func() {
			h.table.SetDisabled(h.table.FindExact("HUH_COMMAND"), true)
			Expect(h.run(alice, "xyzzy")).To(Equal(OutcomeHuh))
			Expect(h.notesFor(alice)).To(Equal([]string{HuhMessage}))
			Expect(h.ran("HUH_COMMAND")).To(BeFalse())
		})
	})

	Describe("MatchCommands", func() {
		It("runs the $commands on one object", func() {
			Expect(h.d.MatchCommands(context.Background(), alice, widget, "twist", false)).To(Equal(1))
			Expect(h.notesFor(widget)).To(Equal([]string{"twisted"}))
		})

		It("runs the $commands of the objects in a room", func() {
			Expect(h.d.MatchCommands(context.Background(), alice, lobby, "push it", true)).To(Equal(1))
			Expect(h.notesFor(widget)).To(Equal([]string{"pushed it"}))
		})

		It("shows lock failures on a single object", func() {
			Expect(h.d.MatchCommands(context.Background(), alice, vault, "open vault", false)).To(Equal(0))
			Expect(h.notesFor(alice)).To(Equal([]string{"The vault is sealed."}))
		})
	})

	Describe("hooks", func() {
		var say *Descriptor

		BeforeEach(func() {
			say = h.table.FindExact("SAY")
		})

		It("lets a false ignore hook send the input to the cascade", func() {
			h.table.SetHook(say, HookIgnore, &Hook{Obj: hooker, Attr: "NO"})
			Expect(h.run(alice, "say hello")).To(Equal(OutcomeHuh))
			Expect(h.ran("SAY")).To(BeFalse())
		})

		It("runs the command when the ignore hook is true", func() {
			h.table.SetHook(say, HookIgnore, &Hook{Obj: hooker, Attr: "YES"})
			Expect(h.run(alice, "say hello")).To(Equal(OutcomeCommand))
			Expect(h.ran("SAY")).To(BeTrue())
		})

		It("gives hooks the parsed arguments in registers", func() {
			h.table.SetHook(say, HookIgnore, &Hook{Obj: hooker, Attr: "LSCHECK"})
			Expect(h.run(alice, "say hello")).To(Equal(OutcomeCommand))
			Expect(h.run(alice, "say")).To(Equal(OutcomeHuh))
		})

		It("skips hooks past the queue depth limit", func() {
			h = newHarness(GinkgoT(), WithHookDepth(1))
			h.table.SetHook(h.table.FindExact("SAY"), HookIgnore, &Hook{Obj: hooker, Attr: "NO"})
			out := h.d.Process(context.Background(), Request{
				Executor: alice, Enactor: alice, Caller: alice, Input: "say hello", Depth: 1,
			})
			Expect(out).To(Equal(OutcomeCommand))
			Expect(h.ran("SAY")).To(BeTrue())
		})

		It("replaces the command with a matching override $command", func() {
			h.table.SetHook(say, HookOverride, &Hook{Obj: hooker})
			Expect(h.run(alice, "say hello")).To(Equal(OutcomeCommand))
			Expect(h.ran("SAY")).To(BeFalse())
			Expect(h.notesFor(hooker)).To(Equal([]string{"hooked hello"}))
		})

		It("runs the command when the override does not match", func() {
			h.table.SetHook(say, HookOverride, &Hook{Obj: hooker, Attr: "SWHOOK"})
			Expect(h.run(alice, "say hello")).To(Equal(OutcomeCommand))
			Expect(h.ran("SAY")).To(BeTrue())
			Expect(h.notesFor(hooker)).To(BeEmpty())
		})

		It("offers unknown switches to the extend hook", func() {
			h.table.SetHook(say, HookExtend, &Hook{Obj: hooker, Attr: "swhook"})
			Expect(h.run(alice, "say/bogus hello")).To(Equal(OutcomeCommand))
			Expect(h.notesFor(hooker)).To(Equal([]string{"extended bogus hello"}))
			Expect(h.notesFor(alice)).To(BeEmpty())
			Expect(h.ran("SAY")).To(BeFalse())
		})
	})

	Describe("rate limiting", func() {
		BeforeEach(func() {
			rl := NewRateLimiter(RateLimiterConfig{BurstCapacity: 1, SustainedRate: MinSustainedRate})
			DeferCleanup(rl.Close)
			h = newHarness(GinkgoT(), WithRateLimiter(rl))
		})

		It("throttles players typing too fast", func() {
			Expect(h.run(alice, "think one")).To(Equal(OutcomeCommand))
			Expect(h.run(alice, "think two")).To(Equal(OutcomeThrottled))
			Expect(h.notesFor(alice)).To(HaveLen(2))
			Expect(h.notesFor(alice)[1]).To(HavePrefix("You are sending commands too quickly."))
		})

		It("never throttles wizards", func() {
			for range 3 {
				Expect(h.run(god, "think again")).To(Equal(OutcomeCommand))
			}
		})

		It("never throttles queued code", func() {
			for range 3 {
				out := h.d.Process(context.Background(), Request{
					Executor: alice, Enactor: alice, Caller: alice, Input: "think queued",
				})
				Expect(out).To(Equal(OutcomeCommand))
			}
		})
	})

	Describe("command logging", func() {
		It("redacts logged passwords", func() {
			Expect(h.run(alice, "@password old=new")).To(Equal(OutcomeCommand))
			Expect(h.logBuf.String()).To(ContainSubstring(`"command":"@PASSWORD ***=***"`))
			Expect(h.logBuf.String()).NotTo(ContainSubstring("old=new"))
		})

		It("logs the input of suspect objects with passwords hidden", func() {
			h.graph.SetFlag(alice, "SUSPECT", true)
			h.run(alice, "@password old=new")
			Expect(h.logBuf.String()).To(ContainSubstring(`"input":"@password ***=***"`))
		})
	})
})
