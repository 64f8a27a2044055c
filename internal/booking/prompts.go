package booking

import (
	"fmt"
	"strings"

	"github.com/wolfman30/clinic-scheduler/internal/records"
	"github.com/wolfman30/clinic-scheduler/internal/session"
)

func promptGreeting() string {
	return "Hello! I can help you book an appointment. Could you share your full name, date of birth (YYYY-MM-DD), and the doctor you would like to see?"
}

func promptMissingFields(missing []string) string {
	return fmt.Sprintf("Thanks! I still need %s to look you up.", joinNaturally(missing))
}

func promptScheduling(p session.Patient, durationMins int) string {
	if p.Returning {
		return fmt.Sprintf("Welcome back, %s! I have you down for a %d-minute visit with %s. What date works for you? You can say things like \"tomorrow\" or \"next Monday\".",
			p.DisplayName(), durationMins, p.Doctor)
	}
	return fmt.Sprintf("Nice to meet you, %s! As a new patient you will have a %d-minute visit with %s. What date works for you? You can say things like \"tomorrow\" or \"next Monday\".",
		p.DisplayName(), durationMins, p.Doctor)
}

func promptSchedulingRetry() string {
	return "Sorry, I couldn't work out a date from that. Could you give me a date like 2025-06-10, or say \"tomorrow\" or \"next Monday\"?"
}

func promptSlotsUnavailable() string {
	return "I'm having trouble checking the schedule right now. Could you give me that date once more?"
}

func promptNoSlots(date string) string {
	return fmt.Sprintf("I'm sorry, there are no open slots on %s. Could you pick another date?", date)
}

func promptSlotList(date, doctor string, slots []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are the available slots with %s on %s:\n", doctor, date)
	for i, slot := range slots {
		fmt.Fprintf(&b, "%d. %s\n", i+1, slot)
	}
	fmt.Fprintf(&b, "Please reply with the number of the slot you would like.")
	return b.String()
}

func promptSlotNotANumber(count int) string {
	return fmt.Sprintf("Please reply with just the slot number, between 1 and %d.", count)
}

func promptSlotOutOfRange(count int) string {
	return fmt.Sprintf("That slot number is not on the list. Please pick a number between 1 and %d.", count)
}

func promptInsurance(p session.Patient) string {
	if p.InsuranceCompany != "" {
		return fmt.Sprintf("Got it. I have %s (member ID %s) on file for your insurance. Could you confirm your insurance company and member ID, or say \"none\" if you won't be using insurance?",
			p.InsuranceCompany, p.MemberID)
	}
	return "Got it. Could you share your insurance company and member ID? If you won't be using insurance, just say \"none\"."
}

func promptConfirmation(s *session.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is your appointment summary:\n")
	fmt.Fprintf(&b, "- Patient: %s (%s)\n", s.Patient.DisplayName(), patientType(s.Patient))
	fmt.Fprintf(&b, "- Doctor: %s\n", s.Appointment.Doctor)
	fmt.Fprintf(&b, "- Date: %s\n", s.Appointment.Date)
	fmt.Fprintf(&b, "- Time: %s\n", s.Appointment.SelectedSlot)
	fmt.Fprintf(&b, "- Duration: %d minutes\n", s.Appointment.DurationMins)
	fmt.Fprintf(&b, "- Insurance: %s (member ID %s)\n", s.Patient.InsuranceCompany, s.Patient.MemberID)
	fmt.Fprintf(&b, "Shall I book it? (yes/no)")
	return b.String()
}

func promptConfirmationRetry() string {
	return "Sorry, I didn't catch that. Please reply \"yes\" to book the appointment or \"no\" to pick a different time."
}

func promptReschedule() string {
	return "No problem, let's find another time. What date works for you?"
}

func promptBooked(rec records.Record) string {
	return fmt.Sprintf("You're all set! Your appointment is booked: %s on %s at %s with %s. Your reference is %s. We'll send you reminders before the visit. Is there anything else I can help with?",
		rec.PatientName, rec.Date, rec.Time, rec.Doctor, rec.AppointmentID)
}

func promptApology() string {
	return "Sorry, something went wrong on my end. Could you say that again?"
}

func joinNaturally(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
